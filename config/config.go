package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	JWTTTL       time.Duration
	ServerPort   int
	LogLevel     slog.Level

	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	RecommendMaxResults     int
	StatusSchedulerInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Ошибку не считаем фатальной: в проде .env обычно нет.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	logLevel, err := parseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	jwtTTL, err := durationEnv("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	rateRequests, err := intEnv("RATE_LIMIT_REQUESTS", 100)
	if err != nil {
		return nil, err
	}
	if rateRequests <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", rateRequests)
	}
	rateWindow, err := durationEnv("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}

	maxResults, err := intEnv("RECOMMEND_MAX_RESULTS", 20)
	if err != nil {
		return nil, err
	}
	if maxResults < 1 || maxResults > 100 {
		return nil, fmt.Errorf("RECOMMEND_MAX_RESULTS must be between 1 and 100, got %d", maxResults)
	}

	schedulerInterval, err := durationEnv("STATUS_SCHEDULER_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:             dbURL,
		JWTSecretKey:            jwtKey,
		JWTTTL:                  jwtTTL,
		ServerPort:              port,
		LogLevel:                logLevel,
		CORSAllowedOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS"), []string{"*"}),
		RateLimitRequests:       rateRequests,
		RateLimitWindow:         rateWindow,
		RecommendMaxResults:     maxResults,
		StatusSchedulerInterval: schedulerInterval,
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", raw)
	}
}

func splitList(raw string, def []string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
