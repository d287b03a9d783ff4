package httprouter

import (
	"context"
	"net/http"

	"github.com/easyfin/easyfin/router"
	jshttprouter "github.com/julienschmidt/httprouter"
)

// Router implements router.Router on top of julienschmidt/httprouter.
type Router struct {
	rt *jshttprouter.Router
}

var _ router.Router = (*Router)(nil)

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

// Handle registers handler for an endpoint like "PATCH /api/admin/users/:id".
func (r *Router) Handle(endpoint string, handler http.Handler) {
	method, path := router.SplitEndpoint(endpoint)
	r.rt.Handler(method, path, handler)
}

func (r *Router) HandleFunc(endpoint string, handler func(http.ResponseWriter, *http.Request)) {
	r.Handle(endpoint, http.HandlerFunc(handler))
}

// New returns a router. notFound, when not nil, answers unmatched paths.
func New(notFound http.Handler) *Router {
	rt := jshttprouter.New()
	if notFound != nil {
		rt.NotFound = notFound
	}
	return &Router{rt: rt}
}

type jsParams struct{}

func (js *jsParams) Get(ctx context.Context) router.Params {
	pms, _ := ctx.Value(jshttprouter.ParamsKey).(jshttprouter.Params)

	params := make(router.Params, 0, len(pms))
	for _, v := range pms {
		params = append(params, router.Param{Key: v.Key, Value: v.Value})
	}
	return params
}

func NewParamGeter() router.ParamGeter {
	return &jsParams{}
}
