package prerouter

import (
	"net/http"
	"strconv"

	"github.com/easyfin/easyfin/core"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	requestsTotalName = "http_server_requests_total"
	requestsTotalHelp = "Total number of HTTP requests handled by the server, labeled by status code."
	statusCodeLabel   = "code"
)

// Metrics counts responses by status code in the App registry.
type Metrics struct {
	app           *core.App
	requestsTotal *prometheus.CounterVec
}

// NewMetrics panics if the counter is already registered in the App
// registry.
func NewMetrics(app *core.App) *Metrics {
	counterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: requestsTotalName,
			Help: requestsTotalHelp,
		},
		[]string{statusCodeLabel},
	)
	app.Registry().MustRegister(counterVec)

	return &Metrics{
		app:           app,
		requestsTotal: counterVec,
	}
}

func (m *Metrics) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.app.Config().Metrics.Activated {
			next.ServeHTTP(w, r)
			return
		}

		rec, ok := w.(*core.ResponseRecorder)
		if !ok {
			m.app.Logger().Error("metrics: expected core.ResponseRecorder", "path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(rec, r)

		m.requestsTotal.WithLabelValues(strconv.Itoa(rec.Status)).Inc()
	})
}
