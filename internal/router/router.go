package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/NumanIbnMazid/restaurant-management/internal/handlers"
	"github.com/NumanIbnMazid/restaurant-management/internal/middleware"
	"github.com/NumanIbnMazid/restaurant-management/pkg/utils"
)

// Handlers bundles everything the router wires up.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Order   *handlers.OrderHandler
	Invoice *handlers.InvoiceHandler
	Table   *handlers.TableHandler
}

// Setup builds the gin engine with middleware and all route groups.
func Setup(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(utils.GinLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api/v1")
	registerAuthRoutes(api, h.Auth)
	registerOrderRoutes(api, h.Order)
	registerInvoiceRoutes(api, h.Invoice)
	registerTableRoutes(api, h.Table)
	return r
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
	}
}

func registerOrderRoutes(api *gin.RouterGroup, h *handlers.OrderHandler) {
	orders := api.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.GetOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/items", h.AddItems)
		orders.POST("/:id/place", h.PlaceItems)
		orders.POST("/:id/confirm", h.Confirm)
		orders.POST("/:id/confirm-without-cancel", h.ConfirmWithoutCancel)
		orders.POST("/:id/serve", h.Serve)
		orders.POST("/:id/cancel-items", h.CancelItems)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.POST("/:id/invoice", h.CreateInvoice)
		orders.POST("/:id/pay", h.Pay)
		orders.POST("/:id/reorder", h.Reorder)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

func registerInvoiceRoutes(api *gin.RouterGroup, h *handlers.InvoiceHandler) {
	// Token lookup stays public: the token itself is the credential.
	api.GET("/invoices/:token", h.GetByToken)

	restaurants := api.Group("/restaurants")
	restaurants.Use(middleware.AuthMiddleware())
	{
		restaurants.GET("/:id/invoices", h.GetInvoices)
	}
}

func registerTableRoutes(api *gin.RouterGroup, h *handlers.TableHandler) {
	restaurants := api.Group("/restaurants")
	restaurants.Use(middleware.AuthMiddleware())
	{
		restaurants.GET("/:id/tables", h.ListTables)
	}

	// Call endpoints are reachable from customer-facing table devices.
	tables := api.Group("/tables")
	{
		tables.POST("/:id/call-staff", h.CallStaff)
		tables.POST("/:id/call-for-payment", h.CallForPayment)
	}
}
