package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementUsersCreated()
	m.IncrementLoginsSucceeded()
	m.IncrementLoginsSucceeded()
	m.IncrementAuthFailures("invalid_credentials")
	m.IncrementAuthFailures("invalid_credentials")
	m.IncrementAuthFailures("validation")
	m.IncrementTokensIssued()
	m.IncrementPasswordChanges()

	assert.InDelta(t, 1, testutil.ToFloat64(m.UsersCreated), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.LoginsSucceeded), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.AuthFailures.WithLabelValues("invalid_credentials")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AuthFailures.WithLabelValues("validation")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TokensIssued), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PasswordChanges), 0)
}

func TestHistograms(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveLogin(time.Now())
	m.ObserveSignup(time.Now())

	assert.Equal(t, 1, testutil.CollectAndCount(m.LoginDurationMs))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SignupDurationMs))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
