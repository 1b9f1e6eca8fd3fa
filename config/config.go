package config

import (
	"fmt"
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
	ServerPort   int

	ChallongeBaseURL     string
	StartGGAPIURL        string
	StartGGOAuthTokenURL string
	StartGGClientID      string
	StartGGClientSecret  string
	HTTPClientTimeout    time.Duration

	UpdateInterval     time.Duration
	TokenCheckInterval time.Duration

	SnapshotCachePath string
	OutputDirectory   string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	CORSAllowedOrigins []string
}

// R2Enabled reports whether overlay output should go to Cloudflare R2 instead of the local
// output directory.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2BucketName != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
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

	httpTimeout, err := positiveIntEnv("HTTP_CLIENT_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	updateInterval, err := positiveIntEnv("UPDATE_INTERVAL_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	tokenCheck, err := positiveIntEnv("TOKEN_CHECK_INTERVAL_MINUTES", 60)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		ChallongeBaseURL:     stringEnv("CHALLONGE_BASE_URL", "https://api.challonge.com/v1"),
		StartGGAPIURL:        stringEnv("STARTGG_API_URL", "https://api.start.gg/gql/alpha"),
		StartGGOAuthTokenURL: stringEnv("STARTGG_OAUTH_TOKEN_URL", "https://api.start.gg/oauth/refresh"),
		StartGGClientID:      os.Getenv("STARTGG_CLIENT_ID"),
		StartGGClientSecret:  os.Getenv("STARTGG_CLIENT_SECRET"),
		HTTPClientTimeout:    time.Duration(httpTimeout) * time.Second,

		UpdateInterval:     time.Duration(updateInterval) * time.Second,
		TokenCheckInterval: time.Duration(tokenCheck) * time.Minute,

		SnapshotCachePath: stringEnv("SNAPSHOT_CACHE_PATH", "data/snapshots.db"),
		OutputDirectory:   stringEnv("OUTPUT_DIRECTORY", "output"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),

		CORSAllowedOrigins: listEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func positiveIntEnv(key string, def int) (int, error) {
	v, err := intEnv(key, def)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}

func listEnv(key string, def []string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
