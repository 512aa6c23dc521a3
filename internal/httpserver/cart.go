package httpserver

import (
	"errors"
	"log"
	"net/http"

	"storefront-api/internal/domain"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	VariantID string `json:"variantId" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity *int64 `json:"quantity" binding:"required,gte=0"`
}

func getCartHandler(logger *log.Logger, svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), currentUserID(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func addCartItemHandler(logger *log.Logger, svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "variantId and a positive quantity are required")
			return
		}
		cart, err := svc.AddItem(c.Request.Context(), currentUserID(c), req.VariantID, req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, cart)
	}
}

func updateCartItemHandler(logger *log.Logger, svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "quantity must be zero or greater")
			return
		}
		cart, err := svc.UpdateItemQuantity(c.Request.Context(), currentUserID(c), c.Param("id"), *req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func removeCartItemHandler(logger *log.Logger, svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.RemoveItem(c.Request.Context(), currentUserID(c), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func clearCartHandler(logger *log.Logger, svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Clear(c.Request.Context(), currentUserID(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// validateCartHandler runs the pre-checkout validation sweep. A cart with
// problems is reported as 400 with the full problem list so the client can fix
// everything in one round trip.
func validateCartHandler(logger *log.Logger, svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.Validate(c.Request.Context(), currentUserID(c))
		if err != nil {
			if errors.Is(err, domain.ErrEmptyCart) {
				respondBadRequest(c, err.Error())
				return
			}
			respondError(c, logger, err)
			return
		}
		if !result.Valid {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "failed",
				"errors": result.Errors,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "valid",
			"priceUpdated": result.PriceUpdated,
			"cart":         result.Cart,
		})
	}
}
