package router

import (
	"context"
	"net/http"
	"strings"
)

// Router registers handlers for endpoints of the form "METHOD /path".
// Paths may contain named parameters like /users/:id.
type Router interface {
	Handle(endpoint string, handler http.Handler)
	HandleFunc(endpoint string, handler func(http.ResponseWriter, *http.Request))
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// ParamGeter extracts path parameters stored in the request context by a
// Router implementation.
type ParamGeter interface {
	Get(ctx context.Context) Params
}

type Param struct {
	Key   string
	Value string
}

type Params []Param

// ByName returns the value of the first parameter with the given key, or
// the empty string.
func (ps Params) ByName(name string) string {
	for _, p := range ps {
		if p.Key == name {
			return p.Value
		}
	}
	return ""
}

// SplitEndpoint splits "METHOD /path". A bare path defaults to GET.
func SplitEndpoint(endpoint string) (method, path string) {
	method, path, ok := strings.Cut(strings.TrimSpace(endpoint), " ")
	if !ok {
		return http.MethodGet, method
	}
	return strings.ToUpper(method), strings.TrimSpace(path)
}
