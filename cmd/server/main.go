package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	catalogapp "github.com/clinic/backend/internal/application/catalog"
	inventoryapp "github.com/clinic/backend/internal/application/inventory"
	"github.com/clinic/backend/internal/infrastructure/auth"
	"github.com/clinic/backend/internal/infrastructure/cache"
	"github.com/clinic/backend/internal/infrastructure/config"
	"github.com/clinic/backend/internal/infrastructure/event"
	"github.com/clinic/backend/internal/infrastructure/logger"
	"github.com/clinic/backend/internal/infrastructure/persistence"
	"github.com/clinic/backend/internal/interfaces/http/handler"
	"github.com/clinic/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting clinic inventory backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	productUnitRepo := persistence.NewGormProductUnitRepository(db.DB)
	locationRepo := persistence.NewGormStorageLocationRepository(db.DB)
	stockRepo := persistence.NewGormLocationStockRepository(db.DB)
	withdrawalRepo := persistence.NewGormWithdrawalRequestRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Conversion-rate cache, Redis backed when configured
	rateCache := cache.NewRateCache(cfg.Cache, cfg.Redis, log)

	// Event bus with audit trail for withdrawal lifecycle events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewWithdrawalAuditHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	resolver := inventoryapp.NewUnitConversionResolver(productUnitRepo, rateCache, log)
	lookup := inventoryapp.NewLocationStockLookup(stockRepo)
	withdrawalService := inventoryapp.NewWithdrawalService(
		withdrawalRepo, locationRepo, resolver, lookup, txScope, eventBus, log)
	stockService := inventoryapp.NewLocationStockService(stockRepo, locationRepo)
	productService := catalogapp.NewProductService(productRepo)
	productUnitService := catalogapp.NewProductUnitService(productRepo, productUnitRepo, resolver)

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(router.Dependencies{
		Config:      cfg,
		Logger:      log,
		JWTService:  jwtService,
		Health:      handler.NewHealthHandler(db, cfg.App.Name, cfg.App.Env),
		Product:     handler.NewProductHandler(productService),
		ProductUnit: handler.NewProductUnitHandler(productUnitService),
		Stock:       handler.NewStockHandler(stockService),
		Withdrawal:  handler.NewWithdrawalHandler(withdrawalService),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.WriteTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
