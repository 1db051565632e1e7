package auth

import "github.com/joeydtaylor/steeze-rhttp/pkg/message"

// Dev-only user injection via headers when AUTH_DEV_BYPASS=true
func devUserFromHeaders(req *message.Request) User {
	user := req.Header.Get("X-Dev-User")
	if user == "" {
		return User{}
	}
	return User{
		Username:             user,
		AuthenticationSource: AuthenticationSource{Provider: req.Header.Get("X-Dev-Provider")},
		Role:                 Role{Name: req.Header.Get("X-Dev-Role")},
	}
}
