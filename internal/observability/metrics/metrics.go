package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics exposes counters/histograms for the catalog and the booking
// workflow. It satisfies catalog.LoadObserver, booking.TransitionObserver and
// booking.SubmitObserver.
type BookingMetrics struct {
	catalogLoads  *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	submitLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		catalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crtv",
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Catalog loads by the source that was served",
		}, []string{"source"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crtv",
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Booking step navigation attempts",
		}, []string{"direction", "result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crtv",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions posted to the studio API",
		}, []string{"branch", "status"}),
		submitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crtv",
			Subsystem: "booking",
			Name:      "submit_latency_seconds",
			Help:      "Latency of the create-booking call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"branch"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.catalogLoads, m.transitions, m.submissions, m.submitLatency)
	return m
}

func (m *BookingMetrics) ObserveCatalogLoad(source string) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(source).Inc()
}

func (m *BookingMetrics) ObserveTransition(direction, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(direction, result).Inc()
}

func (m *BookingMetrics) ObserveSubmission(branch string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "success"
	}
	m.submissions.WithLabelValues(branch, status).Inc()
	m.submitLatency.WithLabelValues(branch).Observe(elapsed.Seconds())
}
