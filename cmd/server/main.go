package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/grpc/server"
	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-posto/internal/adapter/vault"
	wsAdapter "github.com/seu-repo/sigec-posto/internal/adapter/websocket"
	"github.com/seu-repo/sigec-posto/internal/app"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
	"github.com/seu-repo/sigec-posto/internal/service/health"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 2. Initialize Logger
	logger, err := app.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting SIGEC Posto back office",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Resolve secrets from Vault
	if cfg.Vault.Enabled {
		secrets, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.MountPath, logger)
		if err != nil {
			logger.Fatal("Failed to create Vault client", zap.Error(err))
		}
		if err := secrets.Resolve(rootCtx, cfg); err != nil {
			logger.Fatal("Failed to resolve secrets", zap.Error(err))
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// 4. Initialize OpenTelemetry
	if cfg.OpenTelemetry.Enabled {
		tp, err := telemetry.InitTracer(cfg.OpenTelemetry.ServiceName, cfg.App.Version,
			cfg.OpenTelemetry.Jaeger.Endpoint, cfg.OpenTelemetry.Jaeger.SamplerParam)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := telemetry.Shutdown(context.Background(), tp); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Storage, cache and lock, event bus
	st, err := app.OpenStorage(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer st.Close()
	if st.Memory != nil && cfg.App.Environment == "development" {
		app.SeedDemo(st.Memory, time.Now())
		logger.Info("Seeded demo station", zap.String("station_id", app.DemoStationID))
	}

	co, err := app.OpenCoordination(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer co.Close()

	mq, err := app.OpenQueue(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect message queue", zap.Error(err))
	}
	defer mq.Close()

	// 6. Services and event-driven checks
	svc := app.NewServices(cfg, st, co, mq, logger)

	subscriber, notifier, err := app.NewSubscriber(cfg, svc, st, logger)
	if err != nil {
		logger.Fatal("Failed to build alert notifier", zap.Error(err))
	}
	if err := subscriber.Register(mq); err != nil {
		logger.Fatal("Failed to subscribe alert checks", zap.Error(err))
	}

	wsHub := wsAdapter.NewHub(logger)
	go wsHub.Run(rootCtx)
	if err := wsHub.Subscribe(mq); err != nil {
		logger.Fatal("Failed to subscribe alert feed", zap.Error(err))
	}

	if cfg.Alerts.SweepEnabled {
		go svc.Sweeper.Run(rootCtx)
	}

	// 7. Health checks
	healthCfg := &health.Config{Version: cfg.App.Version, DB: st.SQL, Cache: co.Cache}
	if probe, ok := mq.(health.QueueProbe); ok {
		healthCfg.Queue = probe
	}
	healthSvc := health.NewService(healthCfg, logger)
	if notifier != nil {
		healthSvc.RegisterChecker("email", health.BreakerCheck("email", notifier.State))
	}

	// 8. Fiber HTTP Server
	httpApp := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	httpApp.Use(recover.New())
	httpApp.Use(middleware.Metrics())
	if cfg.CORS.Enabled {
		httpApp.Use(middleware.NewCORS(cfg.CORS))
	}
	if cfg.CircuitBreaker.Enabled {
		httpApp.Use(middleware.CircuitBreaker(cfg.CircuitBreaker, logger))
	}

	health.NewFiberHandler(healthSvc).RegisterRoutes(httpApp)
	if cfg.Prometheus.Enabled {
		httpApp.Get(cfg.Prometheus.Path, middleware.PrometheusHandler())
	}

	api := &handlers.Handlers{
		Tanks:  handlers.NewTankHandler(svc.Inventory, logger),
		Alerts: handlers.NewAlertHandler(svc.Alerts, svc.Sweeper, logger),
		Shifts: handlers.NewShiftHandler(svc.Shifts, svc.Reconciliation, logger),
	}
	api.Register(httpApp.Group("/api/v1", middleware.AuthRequired(cfg.JWT, logger)))

	// Live alert feed
	httpApp.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, middleware.AuthRequired(cfg.JWT, logger))

	httpApp.Get("/ws/alerts", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("user_id").(string)
		wsHub.Serve(c, userID, c.Query("station_id"))
	}))

	// 9. gRPC health endpoint
	var grpcServer *server.GRPCServer
	if cfg.GRPC.Enabled {
		grpcServer = server.NewGRPCServer(cfg.JWT, logger)
		go grpcServer.WatchReadiness(rootCtx, func(ctx context.Context) bool {
			return healthSvc.Ready(ctx).Ready
		}, 10*time.Second)

		go func() {
			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
			if err != nil {
				logger.Fatal("Failed to listen for gRPC", zap.Error(err))
			}
			logger.Info("Starting gRPC Server", zap.Int("port", cfg.GRPC.Port))
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC Server failed", zap.Error(err))
			}
		}()
	}

	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := httpApp.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Error("HTTP Server failed", zap.Error(err))
			stop()
		}
	}()

	// 10. Graceful Shutdown
	<-rootCtx.Done()
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpApp.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.Stop()
	}

	logger.Info("Server exited gracefully")
}
