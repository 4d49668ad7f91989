package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at process start and passed into every component.
// Business logic never reads the environment directly.
type Config struct {
	ServerAddr string
	AppEnv     string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTokenTTL time.Duration

	FrontendBaseURL   string
	DefaultClientRole string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	RedisAddr string

	UseS3         bool
	S3Bucket      string
	S3Region      string
	CloudFrontURL string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		AppEnv:     getEnv("APP_ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "backoffice"),

		AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:     getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		ResetTokenTTL: time.Duration(getInt("PASSWORD_RESET_TTL_MINUTES", 30)) * time.Minute,

		FrontendBaseURL:   getEnv("FRONTEND_BASE_URL", "http://localhost:5173"),
		DefaultClientRole: getEnv("DEFAULT_CLIENT_ROLE", "Buyer"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", "no-reply@localhost"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		UseS3:         getEnv("USE_S3", "false") == "true",
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      os.Getenv("S3_REGION"),
		CloudFrontURL: os.Getenv("CLOUDFRONT_URL"),
	}

	log.Println("✅ Config loaded")
	return cfg
}

func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// ValidateSecrets rejects startup with missing, short, or reused signing
// secrets. Access and refresh tokens must never share a key.
func (c *Config) ValidateSecrets() error {
	if c.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET environment variable is required")
	}
	if c.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET environment variable is required")
	}
	if len(c.AccessSecret) < 32 {
		return fmt.Errorf("JWT_ACCESS_SECRET must be at least 32 characters long (current: %d)", len(c.AccessSecret))
	}
	if len(c.RefreshSecret) < 32 {
		return fmt.Errorf("JWT_REFRESH_SECRET must be at least 32 characters long (current: %d)", len(c.RefreshSecret))
	}
	if c.AccessSecret == c.RefreshSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
