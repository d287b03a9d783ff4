package prerouter

import (
	"net/http"
	"time"

	"github.com/easyfin/easyfin/core"
)

type Recorder struct {
	app *core.App
}

func NewRecorder(app *core.App) *Recorder {
	return &Recorder{
		app: app,
	}
}

// Execute installs the shared recorder. It must run before the request log
// and metrics middlewares.
func (rc *Recorder) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &core.ResponseRecorder{
			ResponseWriter: w,
			Status:         http.StatusOK, // implicit when the handler only writes a body
			StartTime:      time.Now(),
		}

		next.ServeHTTP(recorder, r)
	})
}
