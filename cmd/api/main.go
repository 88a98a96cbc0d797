package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/georgemunganga/catalog-service/internal/modules/audit"
	"github.com/georgemunganga/catalog-service/internal/modules/auth"
	"github.com/georgemunganga/catalog-service/internal/modules/catalog"
	"github.com/georgemunganga/catalog-service/internal/modules/metrics"
	"github.com/georgemunganga/catalog-service/internal/modules/user"
	"github.com/georgemunganga/catalog-service/internal/platform/config"
	"github.com/georgemunganga/catalog-service/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zlog, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// ── Storage ─────────────────────────────────────────────
	repos, err := openRepositories(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	zlog.Info("storage ready", zap.String("driver", cfg.StorageDriver))

	if cfg.SeedDemoProducts {
		n, err := catalog.SeedDemoProducts(ctx, repos.products)
		if err != nil {
			zlog.Fatal("seed demo products", zap.Error(err))
		}
		zlog.Info("demo products seeded", zap.Int("count", n))
	}

	// ── Services ────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tracker := metrics.NewTracker(registry)
	auditService := audit.NewService(repos.audits, zlog)
	authService := auth.NewService(repos.users, auditService, auth.Config{
		Secret:      cfg.JWTSecret,
		Issuer:      cfg.JWTIssuer,
		TokenTTL:    cfg.TokenTTL,
		MaxSessions: cfg.MaxSessions,
	})
	catalogService := catalog.NewService(repos.products, auditService, tracker,
		catalog.NewSearchCache(cfg.SearchCacheSize), zlog)

	router := newRouter(services{
		auth:     authService,
		users:    user.NewService(repos.users),
		catalog:  catalogService,
		audit:    auditService,
		tracker:  tracker,
		gatherer: registry,
	}, cfg.CORSAllowedOrigins, zlog)

	// ── Start Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zlog.Info("catalog API server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server", zap.Error(err))
		}
	}()

	// operations run concurrently, so storage is closed only after the server drained
	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			err := server.Shutdown(ctx)
			return errors.Join(err, repos.close())
		},
	})
	exitCode := <-wait
	zlog.Info("catalog API server stopped", zap.Int("exit_code", exitCode))
	zlog.Sync()
	os.Exit(exitCode)
}
