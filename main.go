package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"otpdesk/internal/config"
	"otpdesk/internal/notify"
	"otpdesk/internal/repository"
	"otpdesk/internal/server"
	"otpdesk/internal/service"
)

func main() {
	zlog, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = zlog.Sync() // Flushes buffer, if any
	}()

	log := logrus.New()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		zlog.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewSQLiteDB(cfg.Database.Path, zlog)
	if err != nil {
		zlog.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := repository.MigrateDB(db, zlog); err != nil {
		zlog.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Bootstrap the admin account; warns while the default password is
	// still in place.
	userRepo := repository.NewUserRepository(db, zlog)
	authService := service.NewAuthService(userRepo, cfg.TOTP.Issuer, log)
	if err := authService.EnsureAdmin(cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		zlog.Fatal("Failed to bootstrap admin account", zap.Error(err))
	}

	// Optional Telegram notifier for new comments
	notifier, err := notify.New(cfg, zlog)
	if err != nil {
		zlog.Warn("Failed to initialize Telegram notifier, continuing without it", zap.Error(err))
		notifier = nil
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize and run the server
	srv := server.NewServer(db, cfg, log, zlog, notifier)
	if err := srv.Run(ctx, cfg.Server.Address); err != nil {
		zlog.Fatal("Server failed", zap.Error(err))
	}

	zlog.Info("Application stopped.")
}
