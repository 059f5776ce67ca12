package main

import (
	"context"
	"fmt"
	"os"

	redisclients "github.com/openverity/verigraph-backend/internal/clients/redis"
	"github.com/openverity/verigraph-backend/internal/data/db"
	neo4jgraph "github.com/openverity/verigraph-backend/internal/data/graph"
	"github.com/openverity/verigraph-backend/internal/data/store"
	"github.com/openverity/verigraph-backend/internal/http/handlers"
	"github.com/openverity/verigraph-backend/internal/observability"
	"github.com/openverity/verigraph-backend/internal/platform/envutil"
	"github.com/openverity/verigraph-backend/internal/platform/logger"
	"github.com/openverity/verigraph-backend/internal/platform/neo4jdb"
	"github.com/openverity/verigraph-backend/internal/server"
	"github.com/openverity/verigraph-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: envutil.GetEnv("OTEL_SERVICE_NAME", "verigraph", log),
		Environment: envutil.GetEnv("APP_ENV", "development", log),
		Version:     envutil.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() {
			if err := shutdownOtel(ctx); err != nil {
				log.Warn("OTel shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	graphStore := store.NewGormStore(postgresService.DB(), log)

	// Calibration
	calibration := services.DefaultCalibration()
	if path := envutil.GetEnv("CALIBRATION_PATH", "", log); path != "" {
		calibration, err = services.LoadCalibration(path)
		if err != nil {
			log.Error("Calibration load failed", "path", path, "error", err)
			os.Exit(1)
		}
	}

	// Redis (optional)
	log.Info("Setting up clients from main...")
	scorerOpts := services.ScorerOptions{}
	redisClient, err := redisclients.NewClientFromEnv(log)
	if err != nil {
		log.Warn("Redis init failed, running without lock/notify", "error", err)
	} else if redisClient != nil {
		if locker, err := redisclients.NewRecomputeLocker(redisClient, log); err == nil {
			scorerOpts.Locker = locker
		}
		if notifier, err := redisclients.NewScoreChangeNotifier(redisClient, log); err == nil {
			scorerOpts.Notifier = notifier
		}
	}

	// Neo4j mirror (optional)
	neo4jClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Neo4j init failed, running without mirror", "error", err)
	} else if neo4jClient != nil {
		defer neo4jClient.Close(ctx)
		scorerOpts.Mirror = neo4jgraph.NewVeracityMirror(neo4jClient, log)
	}

	// Services
	log.Info("Setting up services from main...")
	scorer := services.NewVeracityScorer(graphStore, calibration, log, scorerOpts)
	pathFinder := services.NewPathFinder(graphStore, log)
	subgraphExpander := services.NewSubgraphExpander(graphStore, calibration, log)
	relationshipWalker := services.NewRelationshipWalker(graphStore, log)
	ancestryTracer := services.NewAncestryTracer(graphStore, log)
	rankingService := services.NewRankingService(graphStore, calibration, log)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := handlers.NewHealthHandler()
	veracityHandler := handlers.NewVeracityHandler(scorer)
	traversalHandler := handlers.NewTraversalHandler(pathFinder, subgraphExpander, relationshipWalker, ancestryTracer, rankingService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		Log:              log,
		HealthHandler:    healthHandler,
		VeracityHandler:  veracityHandler,
		TraversalHandler: traversalHandler,
	})

	port := envutil.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
