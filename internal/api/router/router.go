package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/surabicare/clinic-scheduler/internal/http/handlers"
	httpmiddleware "github.com/surabicare/clinic-scheduler/internal/http/middleware"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	Health       *handlers.HealthHandler
	Availability *handlers.AvailabilityHandler
	OTP          *handlers.OTPHandler
	Bookings     *handlers.BookingHandler
	Doctors      *handlers.DoctorHandler
	Services     *handlers.ServiceHandler
	AdminBooking *handlers.AdminBookingHandler

	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// OTPRequestRate caps per-IP OTP requests per second; zero disables the
	// limiter.
	OTPRequestRate  float64
	OTPRequestBurst int
}

// New creates the Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: availability lookup, OTP challenge, booking
	// submission, and the token-protected confirmation artifacts.
	r.Group(func(public chi.Router) {
		if cfg.Health != nil {
			public.Get("/health", cfg.Health.Check)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Availability != nil {
			public.Get("/availability", cfg.Availability.Get)
		}
		if cfg.OTP != nil {
			public.Route("/otp", func(otp chi.Router) {
				if cfg.OTPRequestRate > 0 {
					otp.With(httpmiddleware.RateLimit(cfg.OTPRequestRate, cfg.OTPRequestBurst)).
						Post("/request", cfg.OTP.Request)
				} else {
					otp.Post("/request", cfg.OTP.Request)
				}
				otp.Post("/verify", cfg.OTP.Verify)
			})
		}
		if cfg.Bookings != nil {
			public.Post("/bookings", cfg.Bookings.Create)
			public.Get("/bookings/{id}/greeting", cfg.Bookings.Greeting)
			public.Get("/bookings/{id}/qr", cfg.Bookings.QR)
		}
		if cfg.Doctors != nil {
			public.Get("/doctors", cfg.Doctors.List)
			public.Get("/doctors/{id}", cfg.Doctors.Get)
		}
		if cfg.Services != nil {
			public.Get("/services", cfg.Services.List)
			public.Get("/services/{id}", cfg.Services.Get)
		}
	})

	// Staff endpoints behind the admin JWT.
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.AdminBooking != nil {
			admin.Route("/bookings", func(b chi.Router) {
				b.Get("/", cfg.AdminBooking.List)
				b.Post("/bulk/accept", cfg.AdminBooking.BulkAccept)
				b.Post("/bulk/reject", cfg.AdminBooking.BulkReject)
				b.Post("/sweep", cfg.AdminBooking.Sweep)
				b.Post("/reminders", cfg.AdminBooking.Reminders)
				b.Route("/{id}", func(one chi.Router) {
					one.Get("/", cfg.AdminBooking.Get)
					one.Post("/accept", cfg.AdminBooking.Accept)
					one.Post("/reject", cfg.AdminBooking.Reject)
					one.Post("/cancel", cfg.AdminBooking.Cancel)
					one.Post("/complete", cfg.AdminBooking.Complete)
					one.Post("/resend", cfg.AdminBooking.Resend)
				})
			})
		}
		if cfg.Doctors != nil {
			admin.Post("/doctors", cfg.Doctors.Create)
			admin.Put("/doctors/{id}", cfg.Doctors.Update)
			admin.Delete("/doctors/{id}", cfg.Doctors.Delete)
		}
		if cfg.Services != nil {
			admin.Post("/services", cfg.Services.Create)
			admin.Put("/services/{id}", cfg.Services.Update)
			admin.Delete("/services/{id}", cfg.Services.Delete)
		}
	})

	return r
}
