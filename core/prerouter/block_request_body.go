package prerouter

import (
	"net/http"

	"github.com/easyfin/easyfin/core"
)

// BlockRequestBody caps request bodies. Handlers see an error from the body
// reader once the limit is crossed and answer with their invalid input
// response.
type BlockRequestBody struct {
	app *core.App
}

func NewBlockRequestBody(app *core.App) *BlockRequestBody {
	return &BlockRequestBody{
		app: app,
	}
}

func (l *BlockRequestBody) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := l.app.Config().BlockRequestBody

		if !cfg.Activated {
			next.ServeHTTP(w, r)
			return
		}

		for _, path := range cfg.ExcludedPaths {
			if r.URL.Path == path {
				next.ServeHTTP(w, r)
				return
			}
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.Limit)

		next.ServeHTTP(w, r)
	})
}
