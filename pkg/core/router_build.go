package core

import (
	"fmt"

	manifest "github.com/joeydtaylor/steeze-rhttp/pkg/manifest"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

// BuildRegistry binds the manifest routes, in file order, to their handlers.
func BuildRegistry(cfg manifest.Config, d BuildDeps) (*Registry, error) {
	b := NewRegistryBuilder()
	if d.Auth != nil {
		b.Use(resolveUser(d.Auth))
	}
	b.Use(d.Middleware...)

	for i, rt := range cfg.Routes {
		m, ok := message.ParseMethod(rt.Method)
		if !ok {
			return nil, fmt.Errorf("route %d: unsupported method %q", i, rt.Method)
		}
		h, err := wrapRoute(rt, d)
		if err != nil {
			return nil, fmt.Errorf("route %d (%s %s): %w", i, rt.Method, rt.Path, err)
		}
		b.Handle(m, rt.Path, withGuard(h, d.Auth, rt.Guard))
	}

	if d.Extra != nil {
		d.Extra(b)
	}
	return b.Build(), nil
}
