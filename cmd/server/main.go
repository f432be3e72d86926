package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"inkwell/internal/admin"
	"inkwell/internal/audit"
	"inkwell/internal/auth/device"
	authhandler "inkwell/internal/auth/handler"
	authmetrics "inkwell/internal/auth/metrics"
	"inkwell/internal/auth/password"
	"inkwell/internal/auth/service"
	userstore "inkwell/internal/auth/store/user"
	"inkwell/internal/auth/token"
	"inkwell/internal/platform/config"
	"inkwell/internal/platform/database"
	"inkwell/internal/platform/health"
	"inkwell/internal/platform/logger"
	"inkwell/internal/platform/tracer"
	"inkwell/internal/seeder"
	httptransport "inkwell/internal/transport/http"
	"inkwell/pkg/platform/middleware/metadata"
	"inkwell/pkg/platform/middleware/request"
)

const shutdownTimeout = 10 * time.Second

// userStore is what the services need from whichever backend is configured.
type userStore interface {
	service.UserStore
	admin.UserStore
	Ping(ctx context.Context) error
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn("using development JWT secret; set JWT_SECRET outside development")
	}

	log.Info("initializing inkwell",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"database", cfg.UseDatabase(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	healthHandler := health.New(cfg.Environment)

	var (
		users      userStore
		auditStore audit.Store
	)
	if cfg.UseDatabase() {
		pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pool.Migrate(ctx); err != nil {
			return err
		}
		healthHandler.RegisterCheck("database", pool.Health)
		users = userstore.NewPostgres(pool.DB())
		auditStore = audit.NewPostgresStore(pool.DB())
	} else {
		log.Warn("DATABASE_URL not set; identity records and audit events are kept in memory")
		users = userstore.New()
		auditStore = audit.NewInMemoryStore()
	}
	healthHandler.RegisterCheck("user_store", users.Ping)

	tokens, err := token.New(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	hasher := password.NewHasher()

	auditPublisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	if err := seeder.New(users, hasher, log).SeedAdmin(ctx, cfg.Admin); err != nil {
		return err
	}

	otelTracer := tracer.NewOTel()
	authSvc := service.New(users, tokens,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(authmetrics.New(reg)),
		service.WithTracer(otelTracer),
		service.WithPasswordHasher(hasher),
	)
	adminSvc := admin.NewService(users, auditPublisher, log, otelTracer)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:     log,
		Validator:  token.NewMiddlewareAdapter(tokens),
		CookieName: cfg.CookieName,
		Metadata:   metadata.NewMiddleware(metadata.Config{DeviceName: device.DisplayName}),
		Metrics:    request.NewMetrics(reg),
		Auth: authhandler.New(authSvc, log, authhandler.CookieConfig{
			Name:   cfg.CookieName,
			TTL:    tokens.TTL(),
			Secure: cfg.IsProduction(),
		}),
		Admin:          admin.New(adminSvc, log),
		Health:         healthHandler,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
