package main

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/surabicare/clinic-scheduler/internal/api/router"
	"github.com/surabicare/clinic-scheduler/internal/booking"
	appconfig "github.com/surabicare/clinic-scheduler/internal/config"
	"github.com/surabicare/clinic-scheduler/internal/doctors"
	"github.com/surabicare/clinic-scheduler/internal/http/handlers"
	"github.com/surabicare/clinic-scheduler/internal/jobs"
	"github.com/surabicare/clinic-scheduler/internal/notify"
	"github.com/surabicare/clinic-scheduler/internal/observability/metrics"
	"github.com/surabicare/clinic-scheduler/internal/otp"
	"github.com/surabicare/clinic-scheduler/internal/schedule"
	"github.com/surabicare/clinic-scheduler/internal/services"
	"github.com/surabicare/clinic-scheduler/internal/token"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting clinic-scheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	grid, err := schedule.NewGrid(cfg.DayOpen, cfg.DayClose, cfg.SlotInterval)
	if err != nil {
		logger.Error("invalid slot grid configuration", "error", err)
		os.Exit(1)
	}
	policy := booking.ConflictPolicy{Mode: schedule.PolicySlotGrid, BufferMinutes: cfg.BufferMinutes}
	if cfg.AvailabilityPolicy == string(schedule.PolicyBuffer) {
		policy.Mode = schedule.PolicyBuffer
	}

	clinic := notify.ClinicInfo{Name: cfg.ClinicName, Location: cfg.ClinicLocation}
	reg := prometheus.DefaultRegisterer
	m := metrics.NewSchedulerMetrics(reg)

	// Stores: Postgres when a database is configured, in-memory otherwise.
	var (
		pool         *pgxpool.Pool
		bookingStore booking.Store
		doctorStore  doctors.Store
		serviceStore services.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		bookingStore = booking.NewPostgresStore(pool, policy)
		doctorStore = doctors.NewPostgresStore(pool)
		serviceStore = services.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		memBookings := booking.NewMemoryStore(policy)
		memDoctors := doctors.NewMemoryStore()
		memServices := services.NewMemoryStore()
		memDoctors.SetBookingUnlinker(memBookings)
		memServices.SetBookingUnlinker(memBookings)
		bookingStore = memBookings
		doctorStore = memDoctors
		serviceStore = memServices
	}

	// OTP challenges: Redis when configured, in-memory otherwise.
	var (
		redisClient *redis.Client
		otpStore    otp.Store
	)
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
		otpStore = otp.NewRedisStore(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory OTP store")
		otpStore = otp.NewMemoryStore()
	}

	var sender notify.EmailSender
	if cfg.EmailProvider == "sendgrid" {
		if sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sg != nil {
			sender = sg
		}
	}
	if sender == nil {
		sender = notify.NewConsoleSender(logger)
	}
	notifier := notify.NewService(sender, m, logger)

	otpService := otp.NewService(otpStore, notifier, clinic, otp.Options{
		TTL:         cfg.OTPTTL,
		MaxAttempts: cfg.OTPMaxAttempts,
		Metrics:     m,
		Logger:      logger,
	})

	// Dev mode runs with no configuration at all; pair the in-memory stores
	// with a throwaway secret so tokens still work within the process.
	if cfg.TokenSecret == "" && cfg.DatabaseURL == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("generate dev token secret", "error", err)
			os.Exit(1)
		}
		cfg.TokenSecret = hex.EncodeToString(buf)
		logger.Warn("TOKEN_SECRET not set, using an ephemeral secret; confirmation links break on restart")
	}

	tokens, err := token.New(cfg.TokenSecret, cfg.TokenTTL, nil)
	if err != nil {
		logger.Error("token authorizer configuration", "error", err)
		os.Exit(1)
	}

	bookingService := booking.NewService(bookingStore, &grid, notifier, tokens,
		doctorStore, serviceStore, otpService, clinic, booking.Options{
			AdminEmail: cfg.AdminEmail,
			BaseURL:    cfg.PublicBaseURL,
			Metrics:    m,
			Logger:     logger,
		})

	engine := schedule.NewEngine(grid, bookingStore, doctors.NewCalendar(doctorStore))

	var dbPinger, redisPinger handlers.Pinger
	if pool != nil {
		dbPinger = pool
	}
	if redisClient != nil {
		redisPinger = redisPing{redisClient}
	}

	r := router.New(&router.Config{
		Logger:       logger,
		Health:       handlers.NewHealthHandler(dbPinger, redisPinger),
		Availability: handlers.NewAvailabilityHandler(engine, logger),
		OTP:          handlers.NewOTPHandler(otpService, logger),
		Bookings:     handlers.NewBookingHandler(bookingService, tokens, clinic, logger),
		Doctors:      handlers.NewDoctorHandler(doctorStore, logger),
		Services:     handlers.NewServiceHandler(serviceStore, logger),
		AdminBooking: handlers.NewAdminBookingHandler(bookingService, logger),

		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,

		OTPRequestRate:  0.2,
		OTPRequestBurst: 3,
	})

	var scheduler *jobs.Scheduler
	if cfg.JobsEnabled {
		scheduler, err = jobs.New(bookingService, jobs.Config{
			SweepSpec:    cfg.SweepCronSpec,
			ReminderSpec: cfg.ReminderCronSpec,
		}, logger)
		if err != nil {
			logger.Error("invalid cron configuration", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// redisPing adapts the go-redis client to the health handler's Pinger.
type redisPing struct {
	client *redis.Client
}

func (p redisPing) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
