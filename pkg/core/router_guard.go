package core

import (
	"slices"

	manifest "github.com/joeydtaylor/steeze-rhttp/pkg/manifest"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-rhttp/pkg/status"
)

// resolveUser authenticates each frame once so guards and the logging and
// metrics middleware share the result.
func resolveUser(a *auth.Middleware) Middleware {
	return func(next Handler) Handler {
		return func(req *message.Request, res *ResponseBuilder) string {
			return next(a.Resolve(req), res)
		}
	}
}

func withGuard(next Handler, a *auth.Middleware, g manifest.Guard) Handler {
	if !g.Active() {
		return next
	}
	return func(req *message.Request, res *ResponseBuilder) string {
		// No auth middleware wired: guarded routes are closed.
		if a == nil {
			return deny(res, 401)
		}

		u := a.GetUser(req)
		if u.Username == "" {
			return deny(res, 401)
		}
		if len(g.Users) > 0 {
			if slices.Contains(g.Users, u.Username) || a.IsAdmin(u) {
				return next(req, res)
			}
			return deny(res, 403)
		}
		if len(g.Roles) > 0 {
			if slices.Contains(g.Roles, u.Role.Name) || a.IsAdmin(u) {
				return next(req, res)
			}
			return deny(res, 403)
		}
		return next(req, res)
	}
}

func deny(res *ResponseBuilder, code int) string {
	return res.Status(code).ContentType("text/plain; charset=utf-8").Send(status.Text(code))
}
