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

	"github.com/Dosada05/scorebridge/brackets"
	"github.com/Dosada05/scorebridge/cache"
	"github.com/Dosada05/scorebridge/clients"
	"github.com/Dosada05/scorebridge/config"
	"github.com/Dosada05/scorebridge/db"
	"github.com/Dosada05/scorebridge/handlers"
	"github.com/Dosada05/scorebridge/repositories"
	api "github.com/Dosada05/scorebridge/routes"
	"github.com/Dosada05/scorebridge/services"
	"github.com/Dosada05/scorebridge/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.EnsureSchema(schemaCtx, dbConn)
	cancelSchema()
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	snapshots, err := cache.NewBoltStore(cfg.SnapshotCachePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open snapshot cache: %w", err)
	}
	defer func() {
		if err := snapshots.Close(); err != nil {
			logger.Error("failed to close snapshot cache", slog.Any("error", err))
		}
	}()

	uploader, err := newUploader(cfg)
	if err != nil {
		return err
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	httpClient := clients.NewHTTPClient(cfg.HTTPClientTimeout)
	challongeClient := clients.NewChallongeClient(cfg.ChallongeBaseURL, httpClient, logger)
	startGGClient := clients.NewStartGGClient(cfg.StartGGAPIURL, httpClient, logger)
	oauthClient := clients.NewOAuthClient(clients.OAuthConfig{
		TokenURL:     cfg.StartGGOAuthTokenURL,
		ClientID:     cfg.StartGGClientID,
		ClientSecret: cfg.StartGGClientSecret,
	}, httpClient)

	userRepo := repositories.NewPostgresUserRepository(dbConn)

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenRefreshService(userRepo, oauthClient, logger)
	queryService := services.NewQueryService()
	tournamentService := services.NewTournamentService(services.TournamentServiceDeps{
		Users:       userRepo,
		Challonge:   challongeClient,
		StartGG:     startGGClient,
		Tokens:      tokenService,
		Publisher:   services.NewScorePublisher(),
		Snapshots:   snapshots,
		Broadcaster: wsHub,
		Logger:      logger,
	})
	scoreboardService := services.NewScoreboardService(userRepo, tournamentService, uploader, logger)
	logger.Info("Services initialized")

	if n, err := tournamentService.WarmFromCache(); err != nil {
		logger.Warn("failed to restore cached tournaments", slog.Any("error", err))
	} else if n > 0 {
		logger.Info("restored tournaments from snapshot cache", slog.Int("count", n))
	}

	scheduler, err := services.NewScheduler(tournamentService, tokenService, services.SchedulerConfig{
		UpdateInterval:     cfg.UpdateInterval,
		TokenCheckInterval: cfg.TokenCheckInterval,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, tokenService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, queryService)
	scoreboardHandler := handlers.NewScoreboardHandler(scoreboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		cfg.CORSAllowedOrigins,
		authHandler,
		tournamentHandler,
		scoreboardHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}

// newUploader writes overlay files to R2 when it is configured and to the local output
// directory otherwise.
func newUploader(cfg *config.Config) (storage.FileUploader, error) {
	if cfg.R2Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		slog.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
		return uploader, nil
	}

	uploader, err := storage.NewLocalUploader(cfg.OutputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local uploader: %w", err)
	}
	slog.Info("writing overlay files locally", slog.String("directory", cfg.OutputDirectory))
	return uploader, nil
}
