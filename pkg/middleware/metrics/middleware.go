package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-rhttp/pkg/core"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/auth"
)

// Collect produces the handler middleware that records per-endpoint counters.
// A declined request is counted with code "0".
func Collect(ca *auth.Middleware) core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(req *message.Request, res *core.ResponseBuilder) string {
			startTime := time.Now()
			frame := next(req, res)

			if isSkipPath(req) {
				return frame
			}

			role := ""
			if ca != nil {
				role = ca.GetUser(req).Role.Name
			}

			code := "0"
			if frame != "" {
				code = strconv.Itoa(res.Response().StatusCode)
			}
			uri := normalizePath(req) // path only; avoid cardinality explosion

			totalFramesFromRole.WithLabelValues(role).Inc()
			totalFramesToUri.WithLabelValues(code, uri, string(req.Method)).Inc()
			handlerTime.Observe(time.Since(startTime).Seconds())
			return frame
		}
	}
}

// Observer counts every dispatched frame, including ignored ones.
func Observer() core.Observer {
	return core.ObserverFunc(func(o core.Outcome, elapsed time.Duration) {
		totalFrames.WithLabelValues(o.Kind.String(), o.Reason.String()).Inc()
		dispatchTime.Observe(elapsed.Seconds())
	})
}

// CollectHTTP records the admin surface's own requests.
func CollectHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			totalAdminHttpRequests.WithLabelValues(strconv.Itoa(ww.Status()), r.Method).Inc()
		}()
		next.ServeHTTP(ww, r)
	})
}
