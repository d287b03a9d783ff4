package core

import (
	"net/http"
)

var HeadersJson = map[string]string{
	"Content-Type": "application/json; charset=utf-8",

	// Browsers must respect the declared content type.
	"X-Content-Type-Options": "nosniff",

	// Tokens travel in bodies. Nothing may be cached.
	"Cache-Control": "no-store, no-cache, must-revalidate",

	"X-Frame-Options": "DENY",

	// A JSON response is never an active document.
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// HeadersRedirect apply to the OAuth redirects. They carry a session token
// in the location.
var HeadersRedirect = map[string]string{
	"Cache-Control":   "no-store",
	"Referrer-Policy": "no-referrer",
}

func SetHeaders(w http.ResponseWriter, headers map[string]string) {
	for key, value := range headers {
		w.Header().Set(key, value)
	}
}

// HeadersTls are sent on every response served over https.
var HeadersTls = map[string]string{
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
}
