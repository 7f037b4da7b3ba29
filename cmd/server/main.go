package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bistro-app/api/internal/broker"
	"github.com/bistro-app/api/internal/catalog"
	"github.com/bistro-app/api/internal/config"
	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/dinein"
	"github.com/bistro-app/api/internal/events"
	"github.com/bistro-app/api/internal/router"
	"github.com/bistro-app/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	configureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
	log.Info("server stopped")
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("invalid LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.LogFormat == "text" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.MigrationsEnabled {
		version, err := database.Migrate(cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "migrate")
		}
		log.WithField("version", version).Info("database migrated")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return errors.Wrap(err, "ping database")
	}

	hub := ws.NewHub()
	publishers := events.Multi{hub}
	if cfg.AMQPURL != "" {
		b, err := broker.Dial(cfg.AMQPURL, log.WithField("component", "broker"))
		if err != nil {
			return errors.Wrap(err, "dial broker")
		}
		defer b.Close()
		publishers = append(publishers, b)
	} else {
		log.Info("AMQP_URL not set, events are only delivered over websocket")
	}

	session := dinein.NewSession(cfg.TableCount)
	r, err := router.New(cfg, database.New(pool), pool, hub, publishers, session, catalog.Default())
	if err != nil {
		return errors.Wrap(err, "build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
