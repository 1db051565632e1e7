package logger

import (
	"time"

	"github.com/joeydtaylor/steeze-rhttp/pkg/core"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/auth"
	"go.uber.org/zap"
)

// Middleware writes one access line per handled request frame.
type Middleware struct{}

func (m *Middleware) Middleware(ca *auth.Middleware) core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(req *message.Request, res *core.ResponseBuilder) string {
			l := frameAccessLogger()
			start := time.Now()

			frame := next(req, res)

			lat := time.Since(start)

			// nil-safe auth lookups
			isAuth := false
			username := ""
			role := ""
			provider := ""
			if ca != nil {
				u := ca.GetUser(req)
				isAuth = u.Username != ""
				username = u.Username
				role = u.Role.Name
				provider = u.AuthenticationSource.Provider
			}

			outcome := core.Responded
			status := res.Response().StatusCode
			if frame == "" {
				outcome = core.Rejected
				status = 0
			}

			log := l.With(
				zap.String("dateTime", start.UTC().Format(time.RFC1123)),
				zap.String("socketId", req.SocketID),
				zap.Bool("isAuthenticated", isAuth),
				zap.String("username", username),
				zap.String("role", role),
				zap.String("authenticationProvider", provider),
				zap.String("method", string(req.Method)),
				zap.String("uri", req.Path),
				zap.Duration("lat", lat),
				zap.Int("responseSize", len(frame)),
				zap.Int("status", status),
				zap.String("outcome", outcome.String()),
			)

			// Redact by default; allowlist small JSON bodies only.
			if shouldLogBody(req) {
				log.Info("", zap.String("requestData", req.Body))
			} else {
				log.Info("")
			}
			return frame
		}
	}
}
