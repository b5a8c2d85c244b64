package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/latsops/pos-backend/api/routes"
	authsvc "github.com/latsops/pos-backend/internal/auth"
	"github.com/latsops/pos-backend/internal/checkout"
	"github.com/latsops/pos-backend/internal/customers"
	"github.com/latsops/pos-backend/internal/inventory"
	"github.com/latsops/pos-backend/internal/orders"
	"github.com/latsops/pos-backend/internal/sale"
	"github.com/latsops/pos-backend/internal/users"
	"github.com/latsops/pos-backend/pkg/auth/session"
	"github.com/latsops/pos-backend/pkg/config"
	"github.com/latsops/pos-backend/pkg/db"
	"github.com/latsops/pos-backend/pkg/logger"
	"github.com/latsops/pos-backend/pkg/metrics"
	"github.com/latsops/pos-backend/pkg/migrate"
	"github.com/latsops/pos-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	stockRepo := inventory.NewRepository(dbClient.DB())
	customerRepo := customers.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	gateway := checkout.NewGateway(orderRepo, stockRepo, customerRepo, userRepo)
	engine, err := sale.NewEngine(gateway, sale.Options{
		Logger:         logg,
		Metrics:        metrics.NewPipelineMetrics(prometheus.DefaultRegisterer),
		LoyaltyDivisor: cfg.Sale.LoyaltyDivisor,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sale engine", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(engine, sale.NewRegistry(), orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(routes.Params{
			Config:           cfg,
			Logger:           logg,
			DBPinger:         dbClient,
			RedisPinger:      redisClient,
			IdempotencyStore: redisClient,
			SessionChecker:   sessionManager,
			AuthService:      authService,
			CheckoutService:  checkoutService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
