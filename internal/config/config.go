// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gym_club_backend/pkg/utils"

	"github.com/joho/godotenv"
)

type (
	// Config is the full application configuration.
	Config struct {
		Env            string
		Port           string
		PortFallbacks  []string
		AllowedOrigins []string
		DebugEndpoints bool
		PublicBaseURL  string

		Log      LogConfig
		Database DatabaseConfig
		JWT      JWTConfig
		SMTP     SMTPConfig
		Twilio   TwilioConfig
		Media    MediaConfig
		Cron     CronConfig
	}

	LogConfig struct {
		Level    string
		JSON     bool
		FilePath string
	}

	// DatabaseConfig selects the storage driver and its connection.
	DatabaseConfig struct {
		Driver      string // postgres | memory
		URL         string
		Host        string
		Port        string
		User        string
		Password    string
		Name        string
		SSLMode     string
		ApplySchema bool
	}

	JWTConfig struct {
		Secret     string
		Expiration time.Duration
	}

	SMTPConfig struct {
		Host     string
		Port     string
		User     string
		Password string
		From     string
	}

	TwilioConfig struct {
		AccountSID   string
		AuthToken    string
		WhatsAppFrom string
		CountryCode  string
	}

	// MediaConfig covers the remote media store and its local fallback.
	MediaConfig struct {
		CloudinaryURL string
		CloudName     string
		APIKey        string
		APISecret     string
		Folder        string
		UploadDir     string
		MaxBytes      int64
	}

	CronConfig struct {
		Enabled     bool
		ExpiredSpec string
		RenewSpec   string
	}
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	env := strings.ToLower(utils.Getenv("APP_ENV", "development"))
	cfg := &Config{
		Env:            env,
		Port:           utils.Getenv("PORT", "3000"),
		PortFallbacks:  utils.GetenvList("PORT_FALLBACKS", []string{"3001", "3002", "3003", "8080"}),
		AllowedOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		DebugEndpoints: utils.GetenvBool("DEBUG_ENDPOINTS", false),
		PublicBaseURL:  strings.TrimSuffix(utils.Getenv("PUBLIC_BASE_URL", ""), "/"),
		Log: LogConfig{
			Level:    utils.Getenv("LOG_LEVEL", "info"),
			JSON:     env == "production",
			FilePath: utils.Getenv("LOG_FILE", ""),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(utils.Getenv("STORAGE_DRIVER", DriverPostgres)),
			URL:         utils.Getenv("DATABASE_URL", ""),
			Host:        utils.Getenv("DB_HOST", "localhost"),
			Port:        utils.Getenv("DB_PORT", "5432"),
			User:        utils.Getenv("DB_USER", "gym_user"),
			Password:    utils.Getenv("DB_PASSWORD", "gym_password"),
			Name:        utils.Getenv("DB_NAME", "gym_club_db"),
			SSLMode:     utils.Getenv("DB_SSLMODE", "disable"),
			ApplySchema: utils.GetenvBool("DB_APPLY_SCHEMA", false),
		},
		JWT: JWTConfig{
			Secret:     utils.Getenv("JWT_SECRET", ""),
			Expiration: utils.GetenvDuration("JWT_EXPIRATION", 24*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     utils.Getenv("SMTP_HOST", ""),
			Port:     utils.Getenv("SMTP_PORT", "587"),
			User:     utils.Getenv("SMTP_USER", ""),
			Password: utils.Getenv("SMTP_PASSWORD", ""),
			From:     utils.Getenv("SMTP_FROM", ""),
		},
		Twilio: TwilioConfig{
			AccountSID:   utils.Getenv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:    utils.Getenv("TWILIO_AUTH_TOKEN", ""),
			WhatsAppFrom: utils.Getenv("TWILIO_WHATSAPP_FROM", ""),
			CountryCode:  utils.Getenv("WHATSAPP_COUNTRY_CODE", "54"),
		},
		Media: MediaConfig{
			CloudinaryURL: utils.Getenv("CLOUDINARY_URL", ""),
			CloudName:     utils.Getenv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:        utils.Getenv("CLOUDINARY_API_KEY", ""),
			APISecret:     utils.Getenv("CLOUDINARY_API_SECRET", ""),
			Folder:        utils.Getenv("CLOUDINARY_FOLDER", "gym"),
			UploadDir:     utils.Getenv("UPLOAD_DIR", "uploads"),
			MaxBytes:      int64(utils.GetenvInt("UPLOAD_MAX_BYTES", 5<<20)),
		},
		Cron: CronConfig{
			Enabled:     utils.GetenvBool("CRON_ENABLED", false),
			ExpiredSpec: utils.Getenv("CRON_EXPIRED_SPEC", "0 1 * * *"),
			RenewSpec:   utils.Getenv("CRON_RENEW_SPEC", "30 1 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverMemory {
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWT.Secret = "development-only-jwt-secret-change-me"
	}
	if len(c.JWT.Secret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// DSN returns DATABASE_URL when set, otherwise a key/value lib/pq DSN.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// CloudinaryEnabled reports whether remote media credentials are present.
func (m MediaConfig) CloudinaryEnabled() bool {
	return m.CloudinaryURL != "" || (m.CloudName != "" && m.APIKey != "" && m.APISecret != "")
}
