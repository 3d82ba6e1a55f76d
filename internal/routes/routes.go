// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"print-service/internal/config"
	"print-service/internal/database"
	"print-service/internal/handler"
	"print-service/internal/middleware"
	"print-service/internal/repository"
	"print-service/internal/service"
	"print-service/internal/transport"
	"print-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config           *config.Config
	logger           *zap.Logger
	db               *database.DB
	transports       []transport.PrinterTransport
	printService     *service.PrintService
	discoveryService *service.DiscoveryService
	settingsRepo     repository.SettingsRepository
	jobRepo          repository.JobRepository
	eventBus         *handler.EventBus
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *database.DB,
	transports []transport.PrinterTransport,
	printService *service.PrintService,
	discoveryService *service.DiscoveryService,
	settingsRepo repository.SettingsRepository,
	jobRepo repository.JobRepository,
	eventBus *handler.EventBus,
) *Router {
	return &Router{
		config:           cfg,
		logger:           logger,
		db:               db,
		transports:       transports,
		printService:     printService,
		discoveryService: discoveryService,
		settingsRepo:     settingsRepo,
		jobRepo:          jobRepo,
		eventBus:         eventBus,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.db, r.transports, r.config, r.logger)
	printHandler := handler.NewPrintHandler(r.printService, r.logger)
	settingsHandler := handler.NewSettingsHandler(r.settingsRepo, r.discoveryService, r.logger)
	jobHandler := handler.NewJobHandler(r.jobRepo, r.logger)
	wsHandler := handler.NewWebSocketHandler(r.eventBus, r.logger)

	// Health check routes
	healthHandler.RegisterRoutes(router.Group(""))

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	printHandler.RegisterRoutes(apiV1)
	settingsHandler.RegisterRoutes(apiV1)
	jobHandler.RegisterRoutes(apiV1)

	// WebSocket routes
	wsHandler.RegisterRoutes(router.Group("/ws"))

	// Documentation routes
	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
