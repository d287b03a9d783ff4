package prerouter

import (
	"net/http"
	"slices"
	"strings"

	"github.com/easyfin/easyfin/core"
)

// Cors answers browser preflights and decorates responses under the
// configured path prefix.
//
// Outside production every origin is reflected. In production only allow
// listed origins are; requests without an Origin header (mobile clients,
// curl) get a wildcard without credentials, and unknown origins get no
// allow-origin header at all.
type Cors struct {
	app *core.App
}

func NewCors(app *core.App) *Cors {
	return &Cors{app: app}
}

func (c *Cors) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := c.app.Config()
		if !strings.HasPrefix(r.URL.Path, cfg.Cors.PathPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Add("Vary", "Origin")

		origin := r.Header.Get("Origin")
		switch {
		case origin == "":
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Credentials", "false")
		case !cfg.IsProduction() || slices.Contains(cfg.Cors.AllowedOrigins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			if cfg.Cors.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		default:
			c.app.Logger().Debug("cors: origin not allowed", "origin", origin)
		}

		h.Set("Access-Control-Allow-Methods", strings.Join(cfg.Cors.AllowedMethods, ", "))
		h.Set("Access-Control-Allow-Headers", strings.Join(cfg.Cors.AllowedHeaders, ", "))

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
