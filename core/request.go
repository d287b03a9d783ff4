package core

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address of the caller. When the server sits behind a
// proxy the configured header wins over the connection address.
func (a *App) ClientIP(r *http.Request) string {
	if header := a.Config().Server.ClientIpProxyHeader; header != "" {
		if forwarded := r.Header.Get(header); forwarded != "" {
			// first entry is the original client
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
	}
	return remoteIP(r)
}

// remoteIP is the connection address without port.
func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// requestScheme is the scheme the client used to reach us.
func (a *App) requestScheme(r *http.Request) string {
	if a.Config().IsProduction() || r.TLS != nil {
		return "https"
	}
	return "http"
}
