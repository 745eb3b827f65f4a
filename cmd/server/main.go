// Command oraculo-server starts the Oráculo do Coração API server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/portaltarot/oraculo/internal/config"
	"github.com/portaltarot/oraculo/internal/events"
	"github.com/portaltarot/oraculo/internal/limiter"
	"github.com/portaltarot/oraculo/internal/migrate"
	"github.com/portaltarot/oraculo/internal/oracle"
	"github.com/portaltarot/oraculo/internal/repository/postgres"
	httpserver "github.com/portaltarot/oraculo/internal/server/http"
	"github.com/portaltarot/oraculo/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and starts the HTTP server.
func main() {
	// Flags override the config file.
	cfgPath := flag.String("config", "", "path to YAML config")
	addr := flag.String("addr", "", "listen address")
	dsn := flag.String("dsn", "", "PostgreSQL DSN")
	jwtKey := flag.String("jwt-key", "", "HS256 signing key")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dsn != "" {
		cfg.DSN = *dsn
	}
	if *jwtKey != "" {
		cfg.JWTKey = *jwtKey
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("postgres.New", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	connRepo := postgres.NewConnectionRepo(db)
	notifRepo := postgres.NewNotificationRepo(db)

	lim := limiter.NewPGWithQuerier(db.Pool, cfg.Login.Window(), cfg.Login.MaxFails, cfg.Login.BlockFor())

	// Event bus with a diagnostic subscriber for quest/xp signals.
	bus := events.NewBus()
	defer bus.Close()
	go func() {
		for e := range bus.Subscribe() {
			logger.Debug("event", zap.String("name", e.Name), zap.Any("payload", e.Payload))
		}
	}()

	// Services and the swipe core
	authSvc := service.NewAuthService(userRepo, []byte(cfg.JWTKey), cfg.AccessTTL(), lim)
	profileSvc := service.NewProfileService(userRepo, bus)
	loader := oracle.NewLoader(userRepo, connRepo, cfg.PoolPageSize, logger)
	matcher := oracle.NewMatcher(userRepo, connRepo, notifRepo, bus, logger)
	sessions := oracle.NewSessions(userRepo, loader, matcher, logger)
	sessions.SetSwipeRate(rate.Limit(cfg.Swipe.PerSecond), cfg.Swipe.Burst)

	// Idle session sweeper
	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sessions.Sweep()
			}
		}
	}()

	api := httpserver.New(authSvc, profileSvc, sessions, connRepo, notifRepo, []byte(cfg.JWTKey), logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
