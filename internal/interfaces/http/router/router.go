package router

import (
	"github.com/clinic/backend/internal/infrastructure/auth"
	"github.com/clinic/backend/internal/infrastructure/config"
	"github.com/clinic/backend/internal/infrastructure/logger"
	"github.com/clinic/backend/internal/interfaces/http/handler"
	"github.com/clinic/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ApproverRole is the role required to approve or reject withdrawal requests
const ApproverRole = "inventory_manager"

// Dependencies carries everything the router needs to wire the API
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService

	Health      *handler.HealthHandler
	Product     *handler.ProductHandler
	ProductUnit *handler.ProductUnitHandler
	Stock       *handler.StockHandler
	Withdrawal  *handler.WithdrawalHandler
}

// New builds the gin engine with middleware and all API routes registered
func New(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = deps.Config.HTTP.CORSAllowOrigins
	if len(deps.Config.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = deps.Config.HTTP.CORSAllowMethods
	}
	if len(deps.Config.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = deps.Config.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(deps.Logger),
		logger.Recovery(deps.Logger),
		middleware.CORSWithConfig(corsCfg),
	)

	// Probes stay outside authentication
	engine.GET("/health", deps.Health.Health)
	engine.GET("/ready", deps.Health.Ready)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(deps.JWTService))

	registerCatalogRoutes(api, deps)
	registerInventoryRoutes(api, deps)

	return engine
}

func registerCatalogRoutes(api *gin.RouterGroup, deps Dependencies) {
	catalog := api.Group("/catalog")

	products := catalog.Group("/products")
	products.GET("", deps.Product.List)
	products.POST("", deps.Product.Create)
	products.GET("/:id", deps.Product.Get)
	products.PUT("/:id", deps.Product.Update)
	products.DELETE("/:id", deps.Product.Deactivate)
	products.GET("/:id/units", deps.ProductUnit.ListByProduct)
	products.POST("/:id/units", deps.ProductUnit.Create)

	units := catalog.Group("/units")
	units.GET("/:id", deps.ProductUnit.Get)
	units.PUT("/:id", deps.ProductUnit.Update)
	units.DELETE("/:id", deps.ProductUnit.Delete)
}

func registerInventoryRoutes(api *gin.RouterGroup, deps Dependencies) {
	inventory := api.Group("/inventory")

	stocks := inventory.Group("/stocks")
	stocks.GET("", deps.Stock.List)
	stocks.GET("/batch/:batchId", deps.Stock.ListByBatch)

	locations := inventory.Group("/locations")
	locations.GET("", deps.Stock.ListLocations)
	locations.GET("/:id/stocks", deps.Stock.ListByLocation)

	withdrawals := inventory.Group("/withdrawals")
	withdrawals.GET("", deps.Withdrawal.List)
	withdrawals.POST("", deps.Withdrawal.Create)
	withdrawals.POST("/check-availability", deps.Withdrawal.CheckAvailability)
	withdrawals.GET("/number/:number", deps.Withdrawal.GetByNumber)
	withdrawals.GET("/:id", deps.Withdrawal.Get)
	withdrawals.PUT("/:id", deps.Withdrawal.Update)
	withdrawals.DELETE("/:id", deps.Withdrawal.Delete)

	// Approval decisions are restricted to managers
	approvals := withdrawals.Group("")
	approvals.Use(middleware.RequireRole(ApproverRole))
	approvals.POST("/:id/approve", deps.Withdrawal.Approve)
	approvals.POST("/:id/reject", deps.Withdrawal.Reject)
	approvals.POST("/:id/set-approved-to-requested", deps.Withdrawal.SetApprovedToRequested)
}
