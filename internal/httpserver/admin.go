package httpserver

import (
	"log"
	"net/http"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"

	"github.com/gin-gonic/gin"
)

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func adminListOrdersHandler(logger *log.Logger, svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter *domain.OrderStatus
		if raw := c.Query("status"); raw != "" {
			status := domain.OrderStatus(raw)
			if !status.Valid() {
				respondBadRequest(c, "unknown status filter")
				return
			}
			filter = &status
		}
		orders, err := svc.AdminList(c.Request.Context(), filter)
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

func adminGetOrderHandler(logger *log.Logger, svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.AdminGet(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		history, err := svc.History(c.Request.Context(), order.ID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if history == nil {
			history = []domain.OrderStatusHistory{}
		}
		c.JSON(http.StatusOK, gin.H{"order": order, "history": history})
	}
}

func adminUpdateOrderStatusHandler(logger *log.Logger, svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "status is required")
			return
		}
		order, err := svc.UpdateStatus(c.Request.Context(), currentUserID(c), c.Param("id"), domain.OrderStatus(req.Status))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func adminOrderStatsHandler(logger *log.Logger, svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if stats == nil {
			stats = []orderrepo.StatusStat{}
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}
