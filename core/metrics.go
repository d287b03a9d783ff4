package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// login methods
const (
	methodGoogle            = "google"
	methodGoogleIdToken     = "google_id_token"
	methodGoogleAccessToken = "google_access_token"
	methodGoogleCode        = "google_code"
	methodPassword          = "password"
	methodRegister          = "register"
)

// login outcomes
const (
	outcomeSuccess       = "success"
	outcomeBadRequest    = "bad_request"
	outcomeProviderError = "provider_error"
	outcomeInvalid       = "invalid_credentials"
	outcomeLocked        = "locked"
	outcomeConflict      = "conflict"
	outcomeError         = "error"
)

type loginMetrics struct {
	logins *prometheus.CounterVec
}

// newLoginMetrics registers the login counter. It panics on a registration
// conflict, like prometheus.MustRegister.
func newLoginMetrics(reg prometheus.Registerer) *loginMetrics {
	logins := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easyfin_logins_total",
			Help: "Login attempts labeled by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
	reg.MustRegister(logins)
	return &loginMetrics{logins: logins}
}

func (m *loginMetrics) observe(method, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(method, outcome).Inc()
}
