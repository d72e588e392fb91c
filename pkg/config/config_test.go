package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30, cfg.Alerts.ThresholdDays)
	assert.Equal(t, 8*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, "admin", cfg.Bootstrap.AdminUsername)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALERT_THRESHOLD_DAYS", 0)
	v.Set("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	v.Set("REPORTS_SIGNED_URL_TTL", "not-a-duration")

	cfg := fromViper(v)

	assert.Equal(t, 30, cfg.Alerts.ThresholdDays)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Reports.SignedURLTTL)
}
