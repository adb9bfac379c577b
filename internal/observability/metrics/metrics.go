package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulerMetrics exposes counters/histograms for the booking engine.
type SchedulerMetrics struct {
	bookingsCreated    prometheus.Counter
	bookingConflicts   prometheus.Counter
	transitionsTotal   *prometheus.CounterVec
	otpTotal           *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	sweepDuration      prometheus.Histogram
	sweepCompleted     prometheus.Counter
	remindersTotal     *prometheus.CounterVec
}

func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total bookings created",
		}),
		bookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken",
		}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "transitions_total",
			Help:      "Status transitions applied",
		}, []string{"from", "to"}),
		otpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "otp",
			Name:      "events_total",
			Help:      "OTP requests and verification outcomes",
		}, []string{"event"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Outbound notifications by kind and outcome",
		}, []string{"kind", "status"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of the completion sweep",
			Buckets:   prometheus.DefBuckets,
		}),
		sweepCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "sweep_completed_total",
			Help:      "Bookings moved to completed by the sweep",
		}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "reminders_total",
			Help:      "Reminder batch outcomes",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.bookingsCreated, m.bookingConflicts, m.transitionsTotal,
		m.otpTotal, m.notificationsTotal,
		m.sweepDuration, m.sweepCompleted, m.remindersTotal,
	)
	return m
}

func (m *SchedulerMetrics) ObserveBookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

func (m *SchedulerMetrics) ObserveBookingConflict() {
	if m == nil {
		return
	}
	m.bookingConflicts.Inc()
}

func (m *SchedulerMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *SchedulerMetrics) ObserveOTP(event string) {
	if m == nil {
		return
	}
	m.otpTotal.WithLabelValues(event).Inc()
}

func (m *SchedulerMetrics) ObserveNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind, status).Inc()
}

func (m *SchedulerMetrics) ObserveSweep(seconds float64, completed int) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(seconds)
	m.sweepCompleted.Add(float64(completed))
}

func (m *SchedulerMetrics) ObserveReminder(status string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(status).Inc()
}
