package auth

import (
	"context"

	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

type userKey struct{}

// WithUser records u as the resolved caller, anonymous included.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the user stored by WithUser and whether one was.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}

// Resolve authenticates req once and returns a request whose context holds
// the result. Later GetUser calls on the returned request skip token checks.
func (m *Middleware) Resolve(req *message.Request) *message.Request {
	if _, ok := UserFromContext(req.Context()); ok {
		return req
	}
	return req.WithContext(WithUser(req.Context(), m.GetUser(req)))
}
