package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	LogFormat     string
	PublicBaseURL string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	ClinicName     string
	ClinicLocation string

	// Slot grid for a business day. Closed on Sunday regardless.
	DayOpen      string
	DayClose     string
	SlotInterval time.Duration

	// Conflict policy: "grid" (exact slot match) or "buffer" (free-form time
	// with a +/- buffer window).
	AvailabilityPolicy string
	BufferMinutes      int

	OTPTTL         time.Duration
	OTPMaxAttempts int

	// TokenSecret signs confirmation tokens. TokenTTL of zero means tokens
	// never expire.
	TokenSecret string
	TokenTTL    time.Duration

	AdminJWTSecret string

	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	AdminEmail        string

	SweepCronSpec    string
	ReminderCronSpec string
	JobsEnabled      bool

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables. A .env file, when
// present, seeds any variables not already set.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ClinicName:     getEnv("CLINIC_NAME", "Surabi Dental Care"),
		ClinicLocation: getEnv("CLINIC_LOCATION", ""),

		DayOpen:      getEnv("DAY_OPEN", "10:00"),
		DayClose:     getEnv("DAY_CLOSE", "18:00"),
		SlotInterval: getEnvAsDuration("SLOT_INTERVAL", 30*time.Minute),

		AvailabilityPolicy: strings.ToLower(strings.TrimSpace(getEnv("AVAILABILITY_POLICY", "grid"))),
		BufferMinutes:      getEnvAsInt("BUFFER_MINUTES", 30),

		OTPTTL:         getEnvAsDuration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts: getEnvAsInt("OTP_MAX_ATTEMPTS", 5),

		TokenSecret: getEnv("TOKEN_SECRET", ""),
		TokenTTL:    getEnvAsDuration("TOKEN_TTL", 0),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "console"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", ""),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),

		SweepCronSpec:    getEnv("SWEEP_CRON", "5 0 * * *"),
		ReminderCronSpec: getEnv("REMINDER_CRON", "0 8 * * *"),
		JobsEnabled:      getEnvAsBool("JOBS_ENABLED", true),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
