// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "condoflow",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "condoflow",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	reservationOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "condoflow",
			Name:      "reservation_outcome_total",
			Help:      "Count of reservation submissions and decisions by outcome.",
		},
		[]string{"outcome"},
	)

	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "condoflow",
			Name:      "login_attempts_total",
			Help:      "Count of login attempts by result.",
		},
		[]string{"result"},
	)

	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "condoflow",
			Name:      "websocket_clients",
			Help:      "Connected websocket clients.",
		},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "condoflow",
			Name:      "reminders_sent_total",
			Help:      "Count of reservation reminders emitted.",
		},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "condoflow",
			Name:      "job_runs_total",
			Help:      "Count of scheduled job runs by job and result.",
		},
		[]string{"job", "result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, reservationOutcome,
			loginAttempts, wsClients, remindersSent, jobRuns)
	})
}

func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// IncReservation counts a reservation outcome: submitted, approved, rejected,
// completed, deleted, or the reason a submission was refused.
func IncReservation(outcome string) {
	reservationOutcome.WithLabelValues(outcome).Inc()
}

func IncLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

func SetWSClients(n int) {
	wsClients.Set(float64(n))
}

func IncReminder() {
	remindersSent.Inc()
}

func IncJob(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	jobRuns.WithLabelValues(job, result).Inc()
}
