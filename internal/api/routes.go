package api

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions controls the process-level surface of the router.
type RouterOptions struct {
	OutputDir    string
	ServeOutput  bool
	MaxBodyBytes int64
	CORSOrigins  []string
}

// NewRouter builds the gin engine with middleware and all routes registered.
func NewRouter(h *APIHandler, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	router := gin.New() // Use gin.New() for more control over middleware
	router.Use(RequestID())
	router.Use(RequestLogger(logger))
	router.Use(Recovery(logger))
	router.Use(SecurityHeaders())
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	router.Use(ErrorResponder(logger))

	RegisterRoutes(router, h, opts)
	return router
}

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *APIHandler, opts RouterOptions) {
	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/generate", BodyLimit(opts.MaxBodyBytes), h.GenerateSpreadsheet)
	}

	// Files live here only until their cleanup timer fires. Anyone who knows a
	// file name can fetch it during that window.
	if opts.ServeOutput && opts.OutputDir != "" {
		router.Static("/output", opts.OutputDir)
	}

	router.GET("/health", h.Health)
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}
