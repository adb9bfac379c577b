package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "grid", cfg.AvailabilityPolicy)
	assert.Equal(t, 30, cfg.BufferMinutes)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, "10:00", cfg.DayOpen)
	assert.Equal(t, "18:00", cfg.DayClose)
	assert.Equal(t, 30*time.Minute, cfg.SlotInterval)
	assert.True(t, cfg.JobsEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AVAILABILITY_POLICY", "Buffer ")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("BUFFER_MINUTES", "15")
	t.Setenv("JOBS_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, "buffer", cfg.AvailabilityPolicy)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 15, cfg.BufferMinutes)
	assert.False(t, cfg.JobsEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("OTP_MAX_ATTEMPTS", "many")
	t.Setenv("OTP_TTL", "soon")
	t.Setenv("JOBS_ENABLED", "sometimes")

	cfg := Load()

	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.True(t, cfg.JobsEnabled)
}
