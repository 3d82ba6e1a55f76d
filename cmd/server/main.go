// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/database"
	"print-service/internal/handler"
	"print-service/internal/repository"
	"print-service/internal/routes"
	"print-service/internal/service"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	// Transports
	transports []transport.PrinterTransport
	gateway    *transport.GatewayClient

	// Services
	printService     *service.PrintService
	discoveryService *service.DiscoveryService

	// Repositories
	settingsRepo repository.SettingsRepository
	jobRepo      repository.JobRepository

	// Event bus
	eventBus *handler.EventBus
}

// @title Print Service API
// @version 1.0.0
// @description Receipt and kitchen ticket printing service for POS systems
// @termsOfService http://swagger.io/terms/

// @contact.name Print Service API Support
// @contact.email support@printservice.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8090
// @BasePath /api/v1
func main() {
	// Initialize application
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Start the application
	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Create service logger
	serviceLogger := utils.NewServiceLogger(logger, "print-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	// Initialize components
	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := app.initializeTransports(); err != nil {
		return nil, fmt.Errorf("failed to initialize transports: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeDatabase sets up database connection and runs migrations
func (app *Application) initializeDatabase() error {
	// Create database connection
	db, err := database.NewConnection(app.config, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	app.database = db

	// Run migrations
	migrator := database.NewMigrator(db, app.logger, &app.config.Database)
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app.logger.Info("Database initialized successfully")
	return nil
}

// initializeRepositories creates repository instances
func (app *Application) initializeRepositories() error {
	app.settingsRepo = repository.NewSettingsRepository(app.database, app.logger)
	app.jobRepo = repository.NewJobRepository(app.database, app.logger)

	app.logger.Info("Repositories initialized successfully")
	return nil
}

// initializeTransports creates the print transports. The bridge comes
// first so a locally attached printer wins over the network gateway.
func (app *Application) initializeTransports() error {
	bridge := transport.NewBridgeTransport(transport.BridgeConfig{
		BaudRate:   app.config.Bridge.BaudRate,
		Density:    app.config.Bridge.Density,
		CopyPolicy: transport.CopyPolicy(app.config.Bridge.CopyPolicy),
	}, app.logger)

	app.gateway = transport.NewGatewayClient(transport.GatewayConfig{
		Host:         app.config.Gateway.Host,
		SecurePort:   app.config.Gateway.SecurePort,
		FallbackPort: app.config.Gateway.FallbackPort,
		Certificate:  app.config.Gateway.Certificate,
		SignerURL:    app.config.Gateway.SignerURL,
		CallTimeout:  app.config.Gateway.CallTimeout,
	}, app.logger)

	app.transports = []transport.PrinterTransport{bridge, app.gateway}

	app.logger.Info("Print transports initialized",
		zap.Int("transport_count", len(app.transports)),
	)
	return nil
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	// Create event bus for job updates. The websocket handler owns the
	// consuming goroutine, so the bus is not started here.
	app.eventBus = handler.NewEventBus(app.logger)

	// Create print service
	app.printService = service.NewPrintService(
		app.transports,
		app.settingsRepo,
		app.jobRepo,
		app.eventBus,
		app.config,
		app.logger,
	)

	// Create discovery service
	app.discoveryService = service.NewDiscoveryService(
		app.transports,
		transport.NewGatewayLocator(app.logger),
		app.config,
		app.logger,
	)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	// Create router
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.database,
		app.transports,
		app.printService,
		app.discoveryService,
		app.settingsRepo,
		app.jobRepo,
		app.eventBus,
	)

	// Setup router with all routes
	router := routerManager.SetupRouter()

	// Create HTTP server
	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
	)

	return nil
}

// startBackgroundServices starts background services
func (app *Application) startBackgroundServices() {
	// Warm up the gateway connection
	go app.connectGateway()

	// Start cleanup service
	go app.startCleanupService()

	app.logger.Info("Background services started")
}

// connectGateway makes a best effort connect so the gateway is ready
// before the first print request. Failures are logged only, the client
// reconnects on demand.
func (app *Application) connectGateway() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.gateway.Connect(ctx); err != nil {
		app.logger.Warn("Print gateway not reachable at startup", zap.Error(err))
		return
	}
	app.logger.Info("Print gateway connected")
}

// startCleanupService starts cleanup service for old print jobs
func (app *Application) startCleanupService() {
	// Run cleanup every hour
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	app.logger.Info("Cleanup service started",
		zap.Duration("job_retention", app.config.Printing.JobRetention),
	)

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)

		cutoff := time.Now().Add(-app.config.Printing.JobRetention)
		deleted, err := app.jobRepo.DeleteOldJobs(ctx, cutoff)
		if err != nil {
			app.logger.Error("Failed to cleanup old print jobs", zap.Error(err))
		} else if deleted > 0 {
			app.logger.Info("Cleaned up old print jobs", zap.Int64("deleted", deleted))
		}

		cancel()
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	// Create channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for signal
	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Perform graceful shutdown
	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "print-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// Close gateway connection
	if app.gateway != nil {
		if err := app.gateway.Disconnect(); err != nil {
			app.logger.Error("Gateway disconnect error", zap.Error(err))
		}
	}

	// Close database connection
	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	// Flush logger
	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

func (app *Application) Start() error {
	// Start server in goroutine
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Start background services
	app.startBackgroundServices()

	// Wait for interrupt signal
	app.waitForShutdown()

	return nil
}
