package handlers

import (
	"slices"
	"time"

	_ "filling_line/docs"
	"filling_line/internal/logger"
	"filling_line/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services       *service.Service
	log            *logger.Logger
	allowedOrigins []string
}

// NewHandler constructs a new HTTP handler. Without allowed origins no CORS
// headers are sent; "*" allows every origin.
func NewHandler(services *service.Service, log *logger.Logger, allowedOrigins ...string) *Handler {
	return &Handler{services: services, log: log, allowedOrigins: allowedOrigins}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if len(h.allowedOrigins) > 0 {
		router.Use(cors.New(h.corsConfig()))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAPIRoutes(router)

	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if slices.Contains(h.allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.allowedOrigins
	}
	return cfg
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerTagRoutes(api)
		h.registerMethodRoutes(api)
		h.registerEventRoutes(api)
	}
}

func (h *Handler) registerTagRoutes(api *gin.RouterGroup) {
	api.GET("/tags", h.getTags)
	api.GET("/tags/:name", h.getTag)
	api.GET("/status", h.getStatus)
	api.GET("/alarms", h.getAlarms)
}

func (h *Handler) registerMethodRoutes(api *gin.RouterGroup) {
	methods := api.Group("/methods")
	{
		methods.GET("", h.listMethods)
		// Body example: {"args":["PO-1","ART-JUICE-APPLE-1L",1000,1000,450,6.5,3.8,22,2.67]}
		methods.POST("/:name", h.callMethod)
	}
}

func (h *Handler) registerEventRoutes(api *gin.RouterGroup) {
	api.GET("/events", h.getEvents)
}
