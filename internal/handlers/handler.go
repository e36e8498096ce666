package handlers

import (
	"net/http"
	"time"

	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/service"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Stream hands out subscriptions to the status snapshot feed.
type Stream interface {
	Subscribe() (<-chan []byte, []byte, func())
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	stream   Stream
	metrics  http.Handler
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. stream and
// metrics may be nil; their routes are then not registered.
func NewHandler(services *service.Service, stream Stream, metrics http.Handler, log *logger.Logger) *Handler {
	return &Handler{services: services, stream: stream, metrics: metrics, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	if h.log != nil {
		router.Use(ginzap.Ginzap(h.log.Desugar(), time.RFC3339, true))
		router.Use(ginzap.RecoveryWithZap(h.log.Desugar(), true))
	} else {
		router.Use(gin.Recovery())
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// status stream on the same port
	if h.stream != nil {
		router.GET("/ws", h.wsConnect)
	}

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.unclaimedOnly, h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerDeviceRoutes(api)
		h.registerSettingsRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	api.GET("/status", h.getStatus)
	// Body example: {"on":true}
	api.POST("/power", h.setPower)
	api.GET("/manual", h.manual)
}

func (h *Handler) registerSettingsRoutes(api *gin.RouterGroup) {
	api.GET("/config", h.getConfig)
	api.POST("/config", h.updateConfig)
	api.GET("/backup", h.backup)
	api.POST("/restore", h.restore)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	api.GET("/logs", h.getLogText)
	api.GET("/logs/old", h.getOldLogText)
	api.GET("/events", h.getEvents)
}
