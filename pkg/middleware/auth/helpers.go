package auth

import "github.com/joeydtaylor/steeze-rhttp/pkg/message"

// GetUser returns the authenticated user or the zero User. A user already
// resolved into the request context is returned as is.
func (m *Middleware) GetUser(req *message.Request) User {
	if u, ok := UserFromContext(req.Context()); ok {
		return u
	}
	u, err := m.Authenticate(req)
	if err != nil {
		return User{}
	}
	return u
}

func (m *Middleware) IsAuthenticated(req *message.Request) bool {
	return m.GetUser(req).Username != ""
}

// IsAdmin reports whether u holds the configured admin role.
func (m *Middleware) IsAdmin(u User) bool {
	return m.adminRole != "" && u.Role.Name == m.adminRole
}

func (m *Middleware) IsRole(u User, role Role) bool {
	return u.Role.Name == role.Name || m.IsAdmin(u)
}

func (m *Middleware) IsUser(u User, username string) bool {
	return u.Username == username || m.IsAdmin(u)
}
