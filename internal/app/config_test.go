package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/userpanel/internal/app"
	_ "github.com/odyssey-erp/userpanel/testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("JWT_SECRET", "j")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Minute, cfg.PanelIdleTTL)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.PanelAPIURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PANEL_USE_NICKNAME", "true")
	t.Setenv("PANEL_LOCALE", "id")
	t.Setenv("PANEL_API_URL", "https://panel.example.com")

	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.PanelUseNickname)
	assert.Equal(t, "id", cfg.PanelLocale)
	assert.Equal(t, "https://panel.example.com", cfg.PanelAPIURL)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("JWT_SECRET", "")
	_, err := app.LoadConfig()
	assert.Error(t, err)
}

func TestValidateRejectsRelativeAPIURL(t *testing.T) {
	cfg := &app.Config{SessionSecret: "s", CSRFSecret: "c", JWTSecret: "j", RateLimitPerMinute: 1, PanelAPIURL: "/api"}
	assert.Error(t, cfg.Validate())

	cfg.PanelAPIURL = "http://localhost:8080"
	assert.NoError(t, cfg.Validate())
	cfg.RateLimitPerMinute = 0
	assert.Error(t, cfg.Validate())
}
