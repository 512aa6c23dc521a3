package httpserver

import (
	"encoding/json"
	"log"
	"net/http"

	"storefront-api/internal/domain"
	ordersvc "storefront-api/internal/service/order"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	ShippingAddress json.RawMessage `json:"shippingAddress" binding:"required"`
	BillingAddress  json.RawMessage `json:"billingAddress" binding:"required"`
}

func checkoutHandler(logger *log.Logger, svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "shippingAddress and billingAddress are required")
			return
		}
		order, err := svc.Checkout(c.Request.Context(), currentUserID(c), ordersvc.CheckoutInput{
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
		})
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func listOrdersHandler(logger *log.Logger, svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.List(c.Request.Context(), currentUserID(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(logger *log.Logger, svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func cancelOrderHandler(logger *log.Logger, svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Cancel(c.Request.Context(), currentUserID(c), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
