package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, []string{"3001", "3002", "3003", "8080"}, cfg.PortFallbacks)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.Equal(t, "54", cfg.Twilio.CountryCode)
	assert.False(t, cfg.Media.CloudinaryEnabled())
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSNPrefersURL(t *testing.T) {
	d := DatabaseConfig{URL: "postgres://u:p@db:5432/gym", Host: "ignored"}
	assert.Equal(t, "postgres://u:p@db:5432/gym", d.DSN())

	d = DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", d.DSN())
}

func TestListAndDurationOverrides(t *testing.T) {
	t.Setenv("PORT_FALLBACKS", " 4000, ,4001")
	t.Setenv("JWT_EXPIRATION", "2h")
	t.Setenv("CLOUDINARY_URL", "cloudinary://k:s@demo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"4000", "4001"}, cfg.PortFallbacks)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.True(t, cfg.Media.CloudinaryEnabled())
}
