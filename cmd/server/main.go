package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"voterdata/internal/audit"
	jwttoken "voterdata/internal/jwt_token"
	"voterdata/internal/platform/config"
	"voterdata/internal/platform/httpserver"
	"voterdata/internal/platform/logger"
	platformmetrics "voterdata/internal/platform/metrics"
	"voterdata/internal/voter/handler"
	"voterdata/internal/voter/importer"
	votermetrics "voterdata/internal/voter/metrics"
	"voterdata/internal/voter/service"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("voterdata stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var closers closeStack
	defer closers.closeAll(log)

	store, err := buildStore(ctx, cfg, &closers)
	if err != nil {
		return err
	}
	cache, checks, err := buildCache(ctx, cfg, &closers)
	if err != nil {
		return err
	}
	checks["store"] = store.Health

	source, err := buildSource(cfg, log)
	if err != nil {
		return err
	}

	auditSink, worker, err := buildAudit(ctx, cfg, log, &closers)
	if err != nil {
		return err
	}
	publisher := audit.NewPublisher(auditSink)

	voterMetrics := votermetrics.New()
	opts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(voterMetrics),
		service.WithConcurrency(cfg.Resolve.Concurrency),
	}
	if cache != nil {
		opts = append(opts, service.WithCache(cache))
	}
	voters, err := service.New(store, source, opts...)
	if err != nil {
		return fmt.Errorf("build voter service: %w", err)
	}

	imports, err := importer.New(store,
		importer.WithLogger(log),
		importer.WithMaxBytes(cfg.Import.MaxBytes),
		importer.WithAuditPublisher(publisher),
		importer.WithMetrics(voterMetrics),
	)
	if err != nil {
		return fmt.Errorf("build importer: %w", err)
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	router := newRouter(
		handler.New(voters, imports, jwttoken.NewJWTServiceAdapter(jwtService), log, platformmetrics.New()),
		checks,
	)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	if worker != nil {
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		log.Info("starting voterdata",
			"addr", cfg.Server.Addr,
			"store", cfg.Store.Backend,
			"cache", cfg.Cache.Backend,
			"source", cfg.Source.Mode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("voterdata stopped")
		return nil
	})
	return g.Wait()
}

func newRouter(voterHandler *handler.Handler, checks map[string]httpserver.Check) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", httpserver.Health(checks))
	r.Handle("/metrics", promhttp.Handler())
	voterHandler.Register(r)
	return r
}
