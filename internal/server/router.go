package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/openverity/verigraph-backend/internal/http/handlers"
	"github.com/openverity/verigraph-backend/internal/http/middleware"
	"github.com/openverity/verigraph-backend/internal/platform/envutil"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log              *logger.Logger
	HealthHandler    *handlers.HealthHandler
	VeracityHandler  *handlers.VeracityHandler
	TraversalHandler *handlers.TraversalHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("verigraph"))
	if cfg.Log != nil {
		router.Use(middleware.RequestLog(cfg.Log))
	}

	origins := strings.Split(envutil.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", cfg.Log), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/veracity/:targetType/:targetId/recompute", cfg.VeracityHandler.Recompute)

		graph := api.Group("/graph")
		graph.GET("/path", cfg.TraversalHandler.FindPath)
		graph.GET("/nodes/:id/subgraph", cfg.TraversalHandler.GetSubgraph)
		graph.GET("/nodes/:id/related", cfg.TraversalHandler.FindRelatedNodes)
		graph.GET("/nodes/:id/ancestors", cfg.TraversalHandler.GetNodeAncestors)
		graph.GET("/nodes/:id/trusted", cfg.TraversalHandler.GetTrustedNeighbors)
		graph.GET("/nodes/:id/statistics", cfg.TraversalHandler.GetNodeStatistics)
	}

	return router
}
