package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-rhttp/pkg/codec"
	"github.com/joeydtaylor/steeze-rhttp/pkg/core"
	"go.uber.org/zap"
)

// Router is what the admin surface needs from an HTTP mux.
type Router interface {
	Get(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Mux() http.Handler
}

type chiRouter struct{ mux *chi.Mux }

// NewChi returns a Router backed by chi.
func NewChi() Router { return &chiRouter{mux: chi.NewRouter()} }

func (c *chiRouter) Get(path string, h http.Handler)           { c.mux.Method(http.MethodGet, path, h) }
func (c *chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.mux.Use(mw...) }
func (c *chiRouter) Mux() http.Handler                         { return c.mux }

// AdminDeps feeds the admin surface. Metrics may be nil.
type AdminDeps struct {
	Registry *core.Registry
	Identity core.Identity
	Metrics  http.Handler
	Log      *zap.Logger
	// Middleware runs after RequestID and Recoverer.
	Middleware []func(http.Handler) http.Handler
}

type endpointView struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// NewAdmin mounts /ping, /identity, /endpoints and /metrics on r.
func NewAdmin(r Router, d AdminDeps) http.Handler {
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if len(d.Middleware) > 0 {
		r.Use(d.Middleware...)
	}

	r.Get("/identity", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, d.Log, d.Identity)
	}))

	r.Get("/endpoints", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var eps []core.Endpoint
		if d.Registry != nil {
			eps = d.Registry.Endpoints()
		}
		out := make([]endpointView, 0, len(eps))
		for _, ep := range eps {
			out = append(out, endpointView{Method: string(ep.Method), Path: ep.Path})
		}
		writeJSON(w, d.Log, out)
	}))

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}
	return r.Mux()
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, v any) {
	b, err := codec.JSONStrict.Marshal(v)
	if err != nil {
		if log != nil {
			log.Error("admin encode failed", zap.Error(err))
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
	_, _ = w.Write(b)
}
