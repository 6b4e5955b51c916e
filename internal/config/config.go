package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	DBUrl                string
	AppKey               string
	JWTSecret            string
	TokenTTL             time.Duration
	UploadDir            string
	AppEnv               string
	DefaultAdminEmail    string
	DefaultAdminPassword string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	appKey, exists := os.LookupEnv("APP_KEY")
	if !exists || appKey == "" {
		return nil, fmt.Errorf("APP_KEY is required")
	}
	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DBUrl:                resolveDBUrl(),
		AppKey:               appKey,
		JWTSecret:            jwtSecret,
		TokenTTL:             getEnvDuration("TOKEN_TTL", 24*time.Hour),
		UploadDir:            getEnv("UPLOAD_DIR", "uploads"),
		AppEnv:               normalizeEnv(getEnv("APP_ENV", "production")),
		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", ""),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
	}, nil
}

// resolveDBUrl prefers DB_URL and falls back to composing one from the
// split DB_HOST/DB_PORT/DB_USER/DB_PASS/DB_NAME variables.
func resolveDBUrl() string {
	if dbUrl := getEnv("DB_URL", ""); dbUrl != "" {
		return dbUrl
	}

	host := getEnv("DB_HOST", "")
	name := getEnv("DB_NAME", "")
	if host == "" || name == "" {
		return ""
	}

	user := url.QueryEscape(getEnv("DB_USER", "postgres"))
	pass := url.QueryEscape(getEnv("DB_PASS", ""))
	port := getEnv("DB_PORT", "5432")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	if hours, err := strconv.Atoi(value); err == nil && hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return fallback
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
