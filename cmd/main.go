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
	_ "github.com/lib/pq"

	"github.com/Dosada05/sport-events/config"
	"github.com/Dosada05/sport-events/db"
	"github.com/Dosada05/sport-events/handlers"
	"github.com/Dosada05/sport-events/live"
	"github.com/Dosada05/sport-events/repositories"
	api "github.com/Dosada05/sport-events/routes"
	"github.com/Dosada05/sport-events/services"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	handlers.SetLogger(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Инициализация WebSocket Hub
	hub := live.NewHub(logger)
	go hub.Run()
	defer hub.Stop()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	prefRepo := repositories.NewPostgresPreferenceRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.JWTTTL)
	userService := services.NewUserService(userRepo)
	sportService := services.NewSportService(sportRepo)
	preferenceService := services.NewPreferenceService(dbConn, prefRepo, logger)
	eventService := services.NewEventService(eventRepo, participantRepo, hub, logger)
	participantService := services.NewParticipantService(
		dbConn, // Pass dbConn for transaction management
		eventRepo,
		participantRepo,
		userRepo,
		notificationRepo,
		hub,
		logger,
	)
	notificationService := services.NewNotificationService(notificationRepo)
	recommendationService := services.NewRecommendationService(
		userRepo,
		prefRepo,
		participantRepo,
		eventRepo,
		cfg.RecommendMaxResults,
		logger,
	)
	logger.Info("Services initialized")

	// Запуск планировщика автоматического обновления статусов событий
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go services.RunStatusScheduler(schedulerCtx, eventService, cfg.StatusSchedulerInterval, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:          cfg.JWTSecretKey,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRequests:  cfg.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow,
	}, api.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		User:         handlers.NewUserHandler(userService),
		Sport:        handlers.NewSportHandler(sportService),
		Preference:   handlers.NewPreferenceHandler(preferenceService),
		Event:        handlers.NewEventHandler(eventService, recommendationService),
		Participant:  handlers.NewParticipantHandler(participantService),
		Notification: handlers.NewNotificationHandler(notificationService),
		WebSocket:    handlers.NewWebSocketHandler(hub),
		Health:       handlers.NewHealthHandler(dbConn),
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stopScheduler()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
