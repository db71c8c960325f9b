package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/relgraph/graphengine/internal/dbpool"
	"github.com/relgraph/graphengine/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log           *logrus.Logger
	Pool          *dbpool.Pool
	Traversal     TraversalService
	PathAggregate PathAggregateService
	Pathfinding   PathfindingService
	Network       NetworkService
	CORSOrigins   []string
	Version       string
}

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(_ context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, log, deps.Version)
	traversal := NewTraversalHandler(deps.Traversal, log)
	pathAgg := NewPathAggregateHandler(deps.PathAggregate, log)
	pathfinding := NewPathfindingHandler(deps.Pathfinding, log)
	network := NewNetworkHandler(deps.Network, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	api.POST("/graph/traverse", traversal.Traverse)
	api.POST("/graph/aggregate", pathAgg.Aggregate)
	api.POST("/graph/shortest-path", pathfinding.ShortestPath)
	api.POST("/graph/all-shortest-paths", pathfinding.AllShortestPaths)
	api.POST("/graph/centrality", network.Centrality)
	api.POST("/graph/connected-components", network.ConnectedComponents)
	api.POST("/graph/density", network.GraphDensity)
	api.POST("/graph/neighbors", network.Neighbors)
	api.POST("/graph/resilience", network.ResilienceAnalysis)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(r.Group("/api/v1"), deps)

	return r
}
