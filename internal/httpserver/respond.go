package httpserver

import (
	"errors"
	"log"
	"net/http"

	"storefront-api/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError translates domain errors into HTTP responses. Recoverable
// domain conditions become 4xx with the error message; anything unrecognised
// is logged and hidden behind a 500.
func respondError(c *gin.Context, logger *log.Logger, err error) {
	var (
		stockErr       *domain.InsufficientStockError
		unavailableErr *domain.ProductUnavailableError
		transitionErr  *domain.InvalidTransitionError
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotCancellable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": stockErr.Error()})
	case errors.As(err, &unavailableErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": unavailableErr.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": transitionErr.Error()})
	default:
		if logger != nil {
			logger.Printf("http: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
