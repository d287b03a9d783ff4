package easyfin

import (
	"net/http"

	"github.com/easyfin/easyfin/config"
	"github.com/easyfin/easyfin/core"
	r "github.com/easyfin/easyfin/router"
)

func route(cfg *config.Config, ap *core.App) {
	ep := cfg.Endpoints

	authed := func(h http.HandlerFunc) http.Handler {
		return r.NewChain(h).WithMiddleware(ap.RequireAuth).Handler()
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return r.NewChain(h).WithMiddleware(ap.RequireAuth, ap.RequireAdmin).Handler()
	}

	// --- public ---
	ap.Router().HandleFunc(ep.AuthGoogleStart, ap.AuthGoogleStartHandler)
	ap.Router().HandleFunc(ep.AuthGoogleCallback, ap.AuthGoogleCallbackHandler)
	ap.Router().HandleFunc(ep.AuthWithGoogle, ap.AuthWithGoogleHandler)
	ap.Router().HandleFunc(ep.AuthWithPassword, ap.AuthWithPasswordHandler)
	ap.Router().HandleFunc(ep.RegisterWithPassword, ap.RegisterWithPasswordHandler)

	// --- session ---
	ap.Router().Handle(ep.AuthMe, authed(ap.MeHandler))
	ap.Router().Handle(ep.ListAccounts, authed(ap.ListAccountsHandler))
	ap.Router().Handle(ep.ListNotifications, authed(ap.ListNotificationsHandler))

	// --- admin ---
	ap.Router().Handle(ep.AdminListUsers, admin(ap.AdminListUsersHandler))
	ap.Router().Handle(ep.AdminUpdateUser, admin(ap.AdminUpdateUserHandler))

	// Access is checked inside the handler, the endpoint always exists.
	if cfg.Metrics.Endpoint != "" {
		ap.Router().HandleFunc(cfg.Metrics.Endpoint, ap.MetricsHandler)
	}
}
