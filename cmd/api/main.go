package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/app/migrate"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/corptools"
	httpx "github.com/muhammadmueenarif/registeredagentsincapi/internal/http"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository/memory"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository/postgres"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/account"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/billing"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/cart"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/formation"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/profile"
	"github.com/muhammadmueenarif/registeredagentsincapi/pkg/config"
	"github.com/muhammadmueenarif/registeredagentsincapi/pkg/logger"
)

func main() {
	cfg := config.Load()
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := logger.New("api", level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo repository.UserRepository
	var dbHealth func(context.Context) error

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
		if err != nil {
			log.Error("failed to configure migrations", "error", err)
			os.Exit(1)
		}
		defer runner.Close()
		if err := runner.Ping(ctx); err != nil {
			log.Error("database ping failed", "error", err)
			os.Exit(1)
		}
		if err := runner.Ensure(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}

		store := postgres.New(pool)
		repo = store
		dbHealth = store.Health
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
		repo = memory.New()
	}

	api := corptools.New(corptools.Options{
		BaseURL:   cfg.CorpToolsBaseURL,
		AccessKey: cfg.CorpToolsAccessKey,
		SecretKey: cfg.CorpToolsSecretKey,
		Timeout:   cfg.CorpToolsTimeout,
		Logger:    log,
		Debug:     cfg.Debug,
	})

	accountSvc := account.New(repo, log)
	formationSvc := formation.New(api, repo, log)
	billingSvc := billing.New(repo, log, cfg.StripeSecretKey)
	profileSvc := profile.New(repo, log)
	cartSvc := cart.New(repo, log)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, accountSvc, formationSvc, billingSvc, profileSvc, cartSvc, limiter, dbHealth)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
