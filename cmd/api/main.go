package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/vibecheck-app/vibecheck/internal/api"
	"github.com/vibecheck-app/vibecheck/internal/config"
	"github.com/vibecheck-app/vibecheck/internal/convstore"
	"github.com/vibecheck-app/vibecheck/internal/database"
	"github.com/vibecheck-app/vibecheck/internal/embedding"
	"github.com/vibecheck-app/vibecheck/internal/events"
	"github.com/vibecheck-app/vibecheck/internal/llm"
	"github.com/vibecheck-app/vibecheck/internal/profiles"
	"github.com/vibecheck-app/vibecheck/internal/redis"
	"github.com/vibecheck-app/vibecheck/internal/server"
	"github.com/vibecheck-app/vibecheck/internal/simulation"
	"github.com/vibecheck-app/vibecheck/internal/vectorindex"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	var natsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = events.NewPublisher(natsClient.JetStream())
	} else {
		slog.Info("NATS not configured, event publishing disabled")
	}

	embedder, err := embedding.NewBackend(cfg.Embedding)
	if err != nil {
		slog.Error("failed to build embedding backend", "error", err)
		os.Exit(1)
	}

	completer, err := llm.NewCompleter(cfg.LLM)
	if err != nil {
		slog.Error("failed to build llm completer", "error", err)
		os.Exit(1)
	}

	var index vectorindex.Index
	switch cfg.Index.Backend {
	case config.IndexPostgres:
		index = vectorindex.NewPostgresIndex(pool, embedder.Dimension())
		slog.Info("using postgres vector index", "dimension", embedder.Dimension())
	default:
		index = vectorindex.NewMemoryIndex(embedder.Dimension())
		slog.Info("using in-memory vector index", "dimension", embedder.Dimension())
	}

	store := convstore.NewStore(redisClient, time.Duration(cfg.Redis.ConversationTTLSec)*time.Second)

	profileRepo := profiles.NewPostgresRepository(pool)
	profileSvc := profiles.NewService(profileRepo, publisher, nil)
	profileHandler := profiles.NewHandler(profileSvc)

	setup := simulation.NewSetup(index, embedder, publisher)
	responder := simulation.NewResponder(index, embedder, completer, nil, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	simSvc := simulation.NewService(profileSvc, setup, responder, store, publisher, nil)
	simHandler := simulation.NewHandler(simSvc)

	router := api.NewRouter(cfg,
		api.HealthDeps{Pool: pool, Redis: redisClient, NATS: natsClient},
		profileHandler, simHandler,
	)

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
