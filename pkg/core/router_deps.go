package core

import "github.com/joeydtaylor/steeze-rhttp/pkg/middleware/auth"

// BuildDeps carries what BuildRegistry needs beyond the manifest.
type BuildDeps struct {
	Auth  *auth.Middleware
	Relay RelayClient
	// Middleware wraps every endpoint, first entry outermost.
	Middleware []Middleware
	// Extra registers code-defined endpoints after the manifest routes.
	Extra func(*RegistryBuilder)
}
