package prerouter

import (
	"net/http"

	"github.com/easyfin/easyfin/core"
)

// TLSHeaderSTS sets HSTS on https requests. In production the server sits
// behind a TLS terminating proxy, so the header is always sent there.
type TLSHeaderSTS struct {
	app *core.App
}

func NewTLSHeaderSTS(app *core.App) *TLSHeaderSTS {
	return &TLSHeaderSTS{app: app}
}

func (m *TLSHeaderSTS) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil || m.app.Config().IsProduction() {
			core.SetHeaders(w, core.HeadersTls)
		}
		next.ServeHTTP(w, r)
	})
}
