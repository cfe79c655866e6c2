package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:       "8480",
			JWTSecret:  "a-secret-that-is-at-least-32-characters",
			DBPassword: "strong-password",
			DBSSLMode:  "require",
			Env:        "production",
		}
	}

	t.Run("valid production config", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		c := base()
		c.Port = ""
		assert.ErrorContains(t, c.Validate(), "PORT")
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		c := base()
		c.JWTSecret = ""
		assert.ErrorContains(t, c.Validate(), "JWT_SECRET")
	})

	t.Run("default jwt secret rejected in production", func(t *testing.T) {
		c := base()
		c.JWTSecret = "your-secret-key-change-in-production"
		assert.ErrorContains(t, c.Validate(), "default value")
	})

	t.Run("short jwt secret rejected in production", func(t *testing.T) {
		c := base()
		c.JWTSecret = "short"
		assert.ErrorContains(t, c.Validate(), "32 characters")
	})

	t.Run("weak db password rejected in production", func(t *testing.T) {
		c := base()
		c.DBPassword = "password"
		assert.ErrorContains(t, c.Validate(), "DB_PASSWORD")
	})

	t.Run("development tolerates weak values", func(t *testing.T) {
		c := &Config{Port: "8480", JWTSecret: "dev", Env: "development"}
		assert.NoError(t, c.Validate())
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	os.Setenv("APP_ENV", "development")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "8480", c.Port)
	assert.Equal(t, "mosaic", c.DBName)
	assert.Equal(t, 10, c.MaxUploadSizeMB)
	assert.Equal(t, "no-reply@mosaic.local", c.MailFrom)
	assert.Equal(t, "stdout", c.TracingExporter)
	assert.False(t, c.TracingEnabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("PORT")
	os.Setenv("APP_ENV", "development")
	os.Setenv("PORT", "9999")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "9999", c.Port)
}
