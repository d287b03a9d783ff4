package core

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/easyfin/easyfin/config"
)

// redirectAllowed reports whether uri is one of the configured deep links.
// Matching is exact; prefixes and hosts are not considered.
func redirectAllowed(cfg *config.Config, uri string) bool {
	return slices.Contains(cfg.Redirect.AllowedURIs, uri)
}

// withQuery adds values to the query of target, keeping what it had.
func withQuery(target string, values url.Values) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	for k, vs := range values {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = encodeQuery(q)
	return u.String()
}

// encodeQuery is url.Values.Encode with spaces written as %20. Apps decode
// the deep link with decodeURIComponent, which leaves a + as is.
func encodeQuery(v url.Values) string {
	keys := slices.Sorted(maps.Keys(v))
	var buf strings.Builder
	for _, k := range keys {
		for _, val := range v[k] {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(escapeComponent(k))
			buf.WriteByte('=')
			buf.WriteString(escapeComponent(val))
		}
	}
	return buf.String()
}

func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// callbackURL is the OAuth redirect uri Google sends the user back to. The
// start and callback handlers must compute the same value.
func (a *App) callbackURL(r *http.Request) string {
	cfg := a.Config()
	path := cfg.Endpoints.Path(cfg.Endpoints.AuthGoogleCallback)
	if cfg.PublicURL != "" {
		return cfg.PublicURL + path
	}
	return a.requestScheme(r) + "://" + r.Host + path
}

func redirectTo(w http.ResponseWriter, r *http.Request, target string) {
	SetHeaders(w, HeadersRedirect)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
