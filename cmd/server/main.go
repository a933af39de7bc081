// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/premade/internal/auth"
	"github.com/jason-s-yu/premade/internal/cache"
	"github.com/jason-s-yu/premade/internal/config"
	"github.com/jason-s-yu/premade/internal/database"
	"github.com/jason-s-yu/premade/internal/finder"
	"github.com/jason-s-yu/premade/internal/handlers"
	"github.com/jason-s-yu/premade/internal/membership"
	"github.com/jason-s-yu/premade/internal/memstore"
	"github.com/jason-s-yu/premade/internal/metrics"
	"github.com/jason-s-yu/premade/internal/scheduler"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if cfg.JWTPrivateKeyPath != "" {
		err = auth.InitFromPath(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.TokenExpireTime)
	} else {
		logger.Warn("no JWT key paths set; generating an ephemeral key pair")
		err = auth.Init(cfg.TokenExpireTime)
	}
	if err != nil {
		logger.Fatalf("auth: %v", err)
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := memstore.New()
	var store finder.Store = mem
	if cfg.HasDatabase() {
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = database.DSN(cfg.PostgresUser, cfg.PostgresPassword, cfg.PGHost, cfg.PGPort, cfg.PGDatabase)
		}
		pool, err := database.Connect(ctx, dsn)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer pool.Close()

		pg := database.NewStore(pool)
		if cfg.MigrateOnStart {
			if err := pg.Migrate(ctx); err != nil {
				logger.Fatalf("migrate: %v", err)
			}
		}
		store = pg
		logger.Info("connected to database")
	} else {
		logger.Warn("no database configured; using the in-memory store")
	}

	var (
		proposals finder.ProposalCache  = mem
		forecasts finder.ForecastCache  = mem
		events    finder.EventPublisher = mem
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()

		c := cache.New(rdb, cfg.EventQueue, cfg.ProposalTTL)
		proposals, forecasts, events = c, c, c
		logger.WithField("addr", cfg.RedisAddr).Info("connected to redis")
	} else {
		logger.Warn("no redis configured; proposals and events stay in memory")
	}

	members := membership.NewManager(store, logger)
	svc := finder.NewService(store, proposals, forecasts, events, members, logger, finder.Options{
		PoolLimit:    cfg.PoolLimit,
		HistoryLimit: cfg.HistoryLimit,
	})
	watchers := scheduler.NewRegistry(ctx, svc, scheduler.Config{
		DetectInterval:   cfg.DetectInterval,
		EstimateInterval: cfg.EstimateInterval,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(svc, watchers, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	watchers.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
