package httpserver

import (
	"log"
	"net/http"

	"storefront-api/internal/domain"

	"github.com/gin-gonic/gin"
)

func listProductsHandler(logger *log.Logger, svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.ListProducts(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func getProductHandler(logger *log.Logger, svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
