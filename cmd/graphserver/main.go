// Command graphserver runs the graph handler engine's HTTP API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relgraph/graphengine/internal/api"
	"github.com/relgraph/graphengine/internal/config"
	"github.com/relgraph/graphengine/internal/dbpool"
	"github.com/relgraph/graphengine/internal/engine"
	"github.com/relgraph/graphengine/internal/schema"
)

// Build-time variables set via ldflags.
var (
	version = "0.1.0"
	commit  = ""
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	log.SetLevel(level)
	log.SetFormatter(&logrus.JSONFormatter{})

	engine.Configure(cfg.DefaultMaxNodes, cfg.DefaultQueryTimeoutSecs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns, cfg.DefaultQueryTimeoutSecs)
	if err != nil {
		log.WithError(err).Fatal("connecting to database")
	}
	defer pool.Close()

	if cfg.AutoMigrateDemoSchema {
		if err := schema.RunMigrations(ctx, pool, log); err != nil {
			log.WithError(err).Fatal("running demo schema migrations")
		}
	}

	entry := log.WithField("component", "engine")

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:           log,
		Pool:          pool,
		Traversal:     engine.NewTraversalHandler(pool, entry),
		PathAggregate: engine.NewPathAggregateHandler(pool, entry),
		Pathfinding:   engine.NewPathfindingHandler(pool, entry),
		Network:       engine.NewNetworkHandler(pool, entry),
		CORSOrigins:   cfg.CORSOrigins,
		Version:       versionString(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.WithField("addr", cfg.Addr()).Info("graph engine listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server failed")
	}

	log.Info("server stopped")
}

func versionString() string {
	if commit != "" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}

	return version
}
