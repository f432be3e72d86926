package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	UsersCreated     prometheus.Counter
	LoginsSucceeded  prometheus.Counter
	AuthFailures     *prometheus.CounterVec
	TokensIssued     prometheus.Counter
	PasswordChanges  prometheus.Counter
	LoginDurationMs  prometheus.Histogram
	SignupDurationMs prometheus.Histogram
}

// New registers auth collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_users_created_total",
			Help: "Total number of accounts created through signup or seeding",
		}),
		LoginsSucceeded: f.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_logins_succeeded_total",
			Help: "Total number of successful logins",
		}),
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_auth_failures_total",
			Help: "Total number of authentication failures by reason",
		}, []string{"reason"}),
		TokensIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_tokens_issued_total",
			Help: "Total number of session tokens issued",
		}),
		PasswordChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_password_changes_total",
			Help: "Total number of password changes",
		}),
		LoginDurationMs: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkwell_login_duration_ms",
			Help:    "Duration of login requests in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		SignupDurationMs: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkwell_signup_duration_ms",
			Help:    "Duration of signup requests in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementLoginsSucceeded() {
	m.LoginsSucceeded.Inc()
}

func (m *Metrics) IncrementAuthFailures(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementTokensIssued() {
	m.TokensIssued.Inc()
}

func (m *Metrics) IncrementPasswordChanges() {
	m.PasswordChanges.Inc()
}

func (m *Metrics) ObserveLogin(start time.Time) {
	m.LoginDurationMs.Observe(float64(time.Since(start).Milliseconds()))
}

func (m *Metrics) ObserveSignup(start time.Time) {
	m.SignupDurationMs.Observe(float64(time.Since(start).Milliseconds()))
}
