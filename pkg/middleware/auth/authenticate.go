package auth

import (
	"errors"
	"strings"

	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

// ErrNoCredentials means the frame carried no Authorization header.
var ErrNoCredentials = errors.New("auth: no credentials")

// Authenticate resolves the user behind req. A frame without credentials
// yields ErrNoCredentials; a bad token yields another error.
func (m *Middleware) Authenticate(req *message.Request) (User, error) {
	// Dev bypass for local testing (NEVER enable in prod)
	if m.devBypass {
		if u := devUserFromHeaders(req); u.Username != "" {
			return u, nil
		}
	}

	raw := strings.TrimSpace(req.Header.Get("Authorization"))
	if raw == "" {
		return User{}, ErrNoCredentials
	}
	tok, ok := strings.CutPrefix(raw, "Bearer ")
	if !ok {
		return User{}, errors.New("auth: unsupported authorization scheme")
	}
	return m.validateAssertion(strings.TrimSpace(tok))
}
