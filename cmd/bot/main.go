package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"referral_giveaway_bot/internal/api"
	"referral_giveaway_bot/internal/middleware"
	"referral_giveaway_bot/internal/repository"
	"referral_giveaway_bot/internal/service"
	"referral_giveaway_bot/internal/telegram"
	"referral_giveaway_bot/pkg/auth"
	"referral_giveaway_bot/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	bot, err := telegram.New(telegram.Config{
		BotToken:        cfg.Telegram.BotToken,
		Channel:         cfg.Telegram.Channel,
		AdminIDs:        cfg.Telegram.AdminIDs,
		RequiredInvites: cfg.Promo.RequiredInvites,
		MaxGifts:        cfg.Promo.MaxGifts,
		Debug:           cfg.Telegram.Debug,
	})
	if err != nil {
		zapLogger.Fatal("Failed to initialize bot", zap.Error(err))
	}

	referralService := service.NewReferralService(repo, bot.Username())
	bot.SetReferralService(referralService)

	hub := api.NewProgressHub()
	referralService.SetNotifier(hub)

	telegramAuth := auth.NewTelegramAuth(cfg.Telegram.BotToken, cfg.Telegram.AuthDebug)
	adminAuth := middleware.NewAuthorization(cfg.Telegram.AdminIDs)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewReferralRoutes(a, referralService, hub, telegramAuth, adminAuth, cfg.Promo.RequiredInvites)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		if err := router.Run(addr); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	bot.Start(ctx)
	zapLogger.Info("Shutting down")
}
