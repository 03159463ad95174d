package http

import (
	"github.com/gin-gonic/gin"

	"github.com/framecart/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestLogger(handler.log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		videos := v1.Group("/videos")
		{
			videos.POST("/analyze", handler.AnalyzeVideo)
			videos.POST("/ingest", handler.IngestVideo)
		}

		v1.GET("/analyses/:id", handler.GetAnalysis)

		catalog := v1.Group("/catalog")
		{
			catalog.POST("/search", handler.SearchCatalog)
			catalog.POST("/match", handler.MatchFromAnalysis)
		}

		v1.POST("/cart", handler.CreateCart)
	}

	return router
}
