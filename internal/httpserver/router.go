package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"storefront-api/internal/domain"
	cartsvc "storefront-api/internal/service/cart"
	ordersvc "storefront-api/internal/service/order"

	orderrepo "storefront-api/internal/repository/order"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartService is the cart surface the handlers depend on.
type CartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, variantID string, qty int64) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID string, qty int64) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
	Validate(ctx context.Context, userID string) (*cartsvc.ValidationResult, error)
}

// OrderService is the order surface the handlers depend on.
type OrderService interface {
	Checkout(ctx context.Context, userID string, in ordersvc.CheckoutInput) (*domain.Order, error)
	Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error)
	Get(ctx context.Context, userID, orderID string) (*domain.Order, error)
	List(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, actorID, orderID string, status domain.OrderStatus) (*domain.Order, error)
	AdminGet(ctx context.Context, orderID string) (*domain.Order, error)
	AdminList(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error)
	History(ctx context.Context, orderID string) ([]domain.OrderStatusHistory, error)
	Stats(ctx context.Context) ([]orderrepo.StatusStat, error)
}

// ProductService is the catalog read surface for the public listing.
type ProductService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// Deps carries the wired services into the router.
type Deps struct {
	Cart    CartService
	Orders  OrderService
	Catalog ProductService

	JWTSecret   string
	CORSOrigins []string
}

func (d Deps) validate() error {
	if d.Cart == nil || d.Orders == nil || d.Catalog == nil {
		return errors.New("httpserver: missing service dependency")
	}
	if d.JWTSecret == "" {
		return errors.New("httpserver: missing JWT secret")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/products", listProductsHandler(logger, deps.Catalog))
	router.GET("/products/:id", getProductHandler(logger, deps.Catalog))

	authed := router.Group("/", authRequired(deps.JWTSecret))
	{
		authed.GET("/cart", getCartHandler(logger, deps.Cart))
		authed.POST("/cart/items", addCartItemHandler(logger, deps.Cart))
		authed.PATCH("/cart/items/:id", updateCartItemHandler(logger, deps.Cart))
		authed.DELETE("/cart/items/:id", removeCartItemHandler(logger, deps.Cart))
		authed.DELETE("/cart", clearCartHandler(logger, deps.Cart))
		authed.POST("/cart/validate", validateCartHandler(logger, deps.Cart))

		authed.POST("/orders/checkout", checkoutHandler(logger, deps.Orders))
		authed.GET("/orders", listOrdersHandler(logger, deps.Orders))
		authed.GET("/orders/:id", getOrderHandler(logger, deps.Orders))
		authed.POST("/orders/:id/cancel", cancelOrderHandler(logger, deps.Orders))
	}

	admin := router.Group("/admin", authRequired(deps.JWTSecret), adminOnly())
	{
		admin.GET("/orders", adminListOrdersHandler(logger, deps.Orders))
		admin.GET("/orders/stats", adminOrderStatsHandler(logger, deps.Orders))
		admin.GET("/orders/:id", adminGetOrderHandler(logger, deps.Orders))
		admin.PATCH("/orders/:id/status", adminUpdateOrderStatusHandler(logger, deps.Orders))
	}

	return router, nil
}
