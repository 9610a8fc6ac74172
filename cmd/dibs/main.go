package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Kerhoff/dibs/internal/api"
	"github.com/Kerhoff/dibs/internal/config"
	"github.com/Kerhoff/dibs/internal/handlers"
	"github.com/Kerhoff/dibs/internal/notify"
	"github.com/Kerhoff/dibs/internal/repository/postgres"
	"github.com/Kerhoff/dibs/internal/service"
	"github.com/Kerhoff/dibs/internal/telegram"
	"github.com/Kerhoff/dibs/pkg/logger"
)

func main() {
	envFile := pflag.String("env-file", "", "path to a .env file (default: ./.env when present)")
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)
	l.Info("Starting dibs...")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}
	if *migrateOnly {
		return
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db.DB)
	friendshipRepo := postgres.NewFriendshipRepository(db.DB)
	wishListRepo := postgres.NewWishListRepository(db.DB)
	giftRepo := postgres.NewGiftRepository(db.DB)
	dibRepo := postgres.NewDibRepository(db.DB)
	commentRepo := postgres.NewCommentRepository(db.DB)
	notificationRepo := postgres.NewNotificationRepository(db.DB)

	// Telegram bot (optional)
	var bot *telegram.Bot
	if cfg.TelegramEnabled() {
		bot, err = telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}
	}

	// Notification delivery
	channels := []notify.Channel{notify.NewEmailChannel(notify.NewLogMailer(l), cfg.MailFrom)}
	if bot != nil {
		channels = append(channels, notify.NewTelegramChannel(bot))
	}
	dispatcher := notify.NewDispatcher(notificationRepo, userRepo, l, cfg.NotifyQueueSize, channels...)
	go dispatcher.Run(ctx)

	// Service layer
	svc := service.New(l, dispatcher,
		userRepo, friendshipRepo, wishListRepo, giftRepo,
		dibRepo, commentRepo, notificationRepo,
	)

	if bot != nil {
		bot.RegisterCommand("start", handlers.NewStartHandler(l))
		bot.RegisterCommand("help", handlers.NewHelpHandler(l))
		bot.RegisterCommand("link", handlers.NewLinkHandler(svc, l))
		bot.RegisterCommand("dibs", handlers.NewDibsHandler(svc, l))
		bot.RegisterCommand("notifications", handlers.NewNotificationsHandler(svc, l))

		// Start Telegram bot polling
		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	}

	// HTTP API
	apiServer := api.NewServer(svc, l, api.Options{
		JWTSecret:      cfg.JWTSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	apiServer.StartBackground(ctx)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("HTTP server error: %v", err)
			stop()
		}
	}()

	l.Info("dibs started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("HTTP server shutdown error: %v", err)
	}

	l.Info("dibs stopped")
}
