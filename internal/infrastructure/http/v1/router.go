// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"clubledger/internal/infrastructure/http/v1/dto"
	"clubledger/internal/infrastructure/http/v1/handlers"
	"clubledger/internal/infrastructure/http/v1/middleware"
	"clubledger/pkg/logger"
)

// RouterConfig holds the services the API is built from.
type RouterConfig struct {
	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator
	Scopes       handlers.ScopeResolver

	Auth      handlers.AuthService
	Clubs     handlers.ClubService
	Products  handlers.ProductService
	Inventory handlers.InventoryService
	Sales     handlers.SaleService
	Expenses  handlers.ExpenseService
	Reports   handlers.ReportService
	Dashboard handlers.DashboardService

	// Idempotency is optional. Nil disables replay protection.
	Idempotency middleware.IdempotencyStore

	CORSAllowedOrigins []string
	// Development exposes password reset codes in responses.
	Development bool

	Version      string
	HealthChecks map[string]handlers.Pinger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace(cfg.Logger))
	router.Use(middleware.Logger(cfg.Logger, "/health/live", "/health/ready"))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler(cfg.Scopes)

	api := router.Group("/api/v1")
	{
		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerAuthRoutes(api, protected, base, cfg)
		registerClubRoutes(protected, base, cfg)
		registerInventoryRoutes(protected, base, cfg)
		registerSaleRoutes(protected, base, cfg)
		registerReportRoutes(protected, base, cfg)
	}

	return router, nil
}

func registerAuthRoutes(public, protected *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Auth == nil {
		return
	}
	authHandler := handlers.NewAuthHandler(base, cfg.Auth, cfg.Development)
	authHandler.RegisterRoutes(public.Group("/auth"), protected.Group("/auth"))
}

// registerClubRoutes registers clubs and the club-owned catalogs.
func registerClubRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	clubHandler := handlers.NewClubHandler(base, cfg.Clubs)
	clubs := rg.Group("/clubs")
	{
		clubs.GET("", clubHandler.List)
		clubs.POST("", clubHandler.Create)
		clubs.GET("/:id", clubHandler.Get)
	}

	productHandler := handlers.NewProductHandler(base, cfg.Products)
	products := rg.Group("/products")
	RegisterClubCRUDRoutes(products, productHandler)
	products.PATCH("/:id/prices", productHandler.UpdatePrices)

	expenseHandler := handlers.NewExpenseHandler(base, cfg.Expenses)
	RegisterClubCRUDRoutes(rg.Group("/expenses"), expenseHandler)
}

func registerInventoryRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewInventoryHandler(base, cfg.Inventory)
	inv := rg.Group("/inventory")
	{
		inv.GET("", h.Records)
		inv.POST("/adjust", middleware.Idempotency(cfg.Idempotency), h.Adjust)
		inv.GET("/low-stock", h.LowStock)
		inv.GET("/movements/:productId", h.History)
		inv.GET("/audit/:movementId", h.Audit)
		inv.PATCH("/movements/:movementId", h.EditMovement)
		inv.DELETE("/movements/:movementId", h.DeleteMovement)
	}
}

func registerSaleRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewSaleHandler(base, cfg.Sales)
	sales := rg.Group("/sales")
	{
		sales.GET("", h.List)
		sales.POST("", middleware.Idempotency(cfg.Idempotency), h.Create)
		sales.GET("/:id", h.Get)
	}

	d := handlers.NewDashboardHandler(base, cfg.Dashboard)
	rg.GET("/dashboard/kpis", d.KPIs)
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewReportsHandler(base, cfg.Reports)
	reports := rg.Group("/reports")
	{
		reports.GET("", h.Generate)
		reports.GET("/sales-expenses", h.SalesExpenses)
		reports.GET("/export", h.Export)
	}
}
