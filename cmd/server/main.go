package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/sponsorship-backend/internal/config"
	"github.com/ignatzorin/sponsorship-backend/internal/db"
	"github.com/ignatzorin/sponsorship-backend/internal/email"
	"github.com/ignatzorin/sponsorship-backend/internal/enrichment"
	"github.com/ignatzorin/sponsorship-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/sponsorship-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/sponsorship-backend/internal/http/router"
	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/realtime"
	"github.com/ignatzorin/sponsorship-backend/internal/repository"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
	"github.com/ignatzorin/sponsorship-backend/internal/sheets"
	"github.com/ignatzorin/sponsorship-backend/internal/storage"
	"github.com/ignatzorin/sponsorship-backend/internal/twilio"
	"github.com/ignatzorin/sponsorship-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.Env)
	mainLog := logger.WithComponent("main")

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLog.Fatalf("ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		mainLog.Fatalf("ошибка миграций: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	profileRepo := repository.NewProfileRepository(dbConn)
	opportunityRepo := repository.NewOpportunityRepository(dbConn)
	postRepo := repository.NewPostRepository(dbConn)
	listingRepo := repository.NewListingRepository(dbConn)
	matchRepo := repository.NewMatchRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	cache := service.NewCacheService(ctx)
	if _, err := service.NewSeedService(catalogRepo, cache).SeedFromFile(ctx, cfg.SeedPath); err != nil {
		mainLog.Fatalf("ошибка загрузки сида: %v", err)
	}

	// Realtime: локальный хаб, при наличии redis события идут через pub/sub.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, "ws hub", hub.Run)

	var (
		redisClient *redis.Client
		publisher   realtime.Publisher = realtime.NewHubPublisher(hub)
	)
	if cfg.RedisURL != "" {
		redisClient, err = realtime.Connect(ctx, cfg.RedisURL)
		if err != nil {
			mainLog.Fatalf("ошибка подключения к redis: %v", err)
		}
		defer redisClient.Close()
		publisher = realtime.NewRedisPublisher(redisClient)
		goroutine.SafeGoWithContext(ctx, "realtime subscribe", func(ctx context.Context) {
			realtime.Subscribe(ctx, redisClient, hub)
		})
	}

	mediaStorage, err := storage.New(cfg.Storage, cfg.MaxUploadSizeMB)
	if err != nil {
		mainLog.Fatalf("не удалось подготовить хранилище медиа: %v", err)
	}
	mediaRoot := ""
	if local, ok := mediaStorage.(*storage.LocalStorage); ok {
		mediaRoot = local.Root()
	}

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	notificationService := service.NewNotificationService(notificationRepo, publisher)
	authService := service.NewAuthService(userRepo, profileRepo, tokenManager)
	profileService := service.NewProfileService(profileRepo, enrichment.NewClient(cfg.Enrichment))
	listingService := service.NewListingService(opportunityRepo, postRepo)
	matchService := service.NewMatchService(matchRepo, listingRepo, email.NewSender(cfg.SMTP), notificationService, service.MatchConfig{
		AppBaseURL:        cfg.AppBaseURL,
		NotifyBrandOnLike: cfg.NotifyBrandOnLike,
	})
	moderationService := service.NewModerationService(listingRepo, opportunityRepo, postRepo, notificationService)
	discoveryService := service.NewDiscoveryService(opportunityRepo, postRepo, matchRepo)
	otpService := service.NewOTPService(twilio.NewClient(cfg.Twilio), profileService)
	mediaService := service.NewMediaService(mediaRepo, mediaStorage)
	catalogService := service.NewCatalogService(catalogRepo, cache)
	fundraisingService := service.NewFundraisingService(sheets.NewClient(cfg.Fundraising.SheetURL), cache, cfg.Fundraising.CacheTTL)

	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:          httpHandlers.NewAuthHandler(authService),
		Profile:       httpHandlers.NewProfileHandler(profileService),
		Opportunity:   httpHandlers.NewOpportunityHandler(listingService),
		Post:          httpHandlers.NewPostHandler(listingService),
		Match:         httpHandlers.NewMatchHandler(matchService),
		Admin:         httpHandlers.NewAdminHandler(moderationService, matchService),
		Discovery:     httpHandlers.NewDiscoveryHandler(discoveryService),
		OTP:           httpHandlers.NewOTPHandler(otpService),
		Media:         httpHandlers.NewMediaHandler(mediaService),
		Catalog:       httpHandlers.NewCatalogHandler(catalogService),
		Notification:  httpHandlers.NewNotificationHandler(notificationService),
		Fundraising:   httpHandlers.NewFundraisingHandler(fundraisingService),
		WS:            httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Health:        httpHandlers.NewHealthHandler(dbConn, redisClient),
		MediaRootPath: mediaRoot,
	}, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLog.Errorf("ошибка остановки http сервера: %v", err)
		}
	}()

	mainLog.Infof("HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		mainLog.Fatalf("сервер завершился с ошибкой: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}
