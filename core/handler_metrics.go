package core

import (
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves Prometheus metrics in the standard format
// Endpoint: GET /metrics
// Authenticated: No, ip allow-list
// Allowed Mimetype: text/plain
func (a *App) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	cfg := a.Config().Metrics
	if !cfg.Activated {
		WriteJsonError(w, errorNotFound)
		return
	}

	// The connection address, never a forwarded header. Exact match only.
	if !slices.Contains(cfg.AllowedIPs, remoteIP(r)) {
		WriteJsonError(w, errorNotFound)
		return
	}

	promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
