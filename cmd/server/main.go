package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"confide/internal/category"
	categoryhandler "confide/internal/category/handler"
	"confide/internal/comment"
	commenthandler "confide/internal/comment/handler"
	"confide/internal/confession"
	confessionhandler "confide/internal/confession/handler"
	"confide/internal/identity"
	identityhandler "confide/internal/identity/handler"
	"confide/internal/live"
	"confide/internal/platform/config"
	"confide/internal/platform/httpserver"
	"confide/internal/platform/logger"
	"confide/internal/platform/metrics"
	"confide/internal/platform/postgres"
	platformredis "confide/internal/platform/redis"
	"confide/internal/reaction"
	reactionhandler "confide/internal/reaction/handler"
	"confide/internal/stream"
	transport "confide/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("postgres storage enabled")
	} else {
		log.Info("no postgres URL configured, using in-memory storage")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	mirror, err := stream.NewMirror(cfg.KafkaBrokers, cfg.KafkaTopic, log, m)
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	if mirror != nil {
		defer mirror.Close()
	}

	var (
		identityStore   identity.Store
		categoryStore   category.Store
		confessionStore confession.Store
		commentStore    comment.Store
		reactionStore   reaction.Store
	)
	if db != nil {
		identityStore = identity.NewPostgresStore(db)
		categoryStore = category.NewPostgresStore(db)
		confessionStore = confession.NewPostgresStore(db)
		commentStore = comment.NewPostgresStore(db)
		reactionStore = reaction.NewPostgresStore(db)
	} else {
		identityStore = identity.NewInMemoryStore()
		categoryStore = category.NewInMemoryStore()
		confessionStore = confession.NewInMemoryStore()
		commentStore = comment.NewInMemoryStore()
		reactionStore = reaction.NewInMemoryStore()
	}

	hub := live.NewHub(log, m)
	bridge := live.NewBridge(redisClient, hub, log)
	publisher := live.NewPublisher(hub, bridge, mirror, log, m)

	tokens := identity.NewTokenService(cfg.JWTSigningKey)
	identitySvc := identity.NewService(identityStore, tokens, log, m)
	categorySvc := category.NewService(categoryStore, log)
	confessionSvc := confession.NewService(confessionStore, identityStore, publisher, log, m, cfg.MaxConfessionLength)

	counters := reaction.NewCounterMaintainer(confessionStore, commentStore)
	reactionSvc := reaction.NewService(reactionStore, counters, publisher, log, m, reaction.Config{
		DefaultEmoji:         cfg.DefaultEmoji,
		RequireExplicitEmoji: cfg.RequireExplicitEmoji,
	})
	commentSvc := comment.NewService(commentStore, confessionStore, reactionSvc, publisher, log, m, cfg.MaxConfessionLength)

	router := transport.NewRouter(transport.Dependencies{
		Logger:    log,
		Validator: tokens,
		DB:        db,
		Redis:     redisClient,
		Handlers: []transport.Registrar{
			identityhandler.New(identitySvc, log),
			categoryhandler.New(categorySvc, log),
			confessionhandler.New(confessionSvc, log),
			commenthandler.New(commentSvc, log),
			reactionhandler.New(reactionSvc, log),
			live.NewHandler(hub, log, cfg.OpenTopicJoin),
		},
	})

	server := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if bridge != nil {
		g.Go(func() error {
			if err := bridge.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if mirror != nil {
		g.Go(func() error {
			if err := mirror.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
