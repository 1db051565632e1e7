// core/handlers.go
package core

import (
	"fmt"

	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

// Handler answers one request. It returns the frame produced by res.Send,
// or "" to decline, which the dispatcher reports as a rejection.
// A handler must not keep res after it returns.
type Handler func(req *message.Request, res *ResponseBuilder) string

// Middleware wraps a Handler.
type Middleware func(next Handler) Handler

var registry = map[string]Handler{}

// Register makes a handler available under a name referenced in manifest.toml
func Register(name string, h Handler) {
	if name == "" || h == nil {
		panic("core: handler name and func required")
	}
	registry[name] = h
}

// Lookup retrieves a registered in-proc handler by name.
func Lookup(name string) (Handler, bool) {
	h, ok := registry[name]
	return h, ok
}

func mustLookup(name string) (Handler, error) {
	h, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("handler %q not registered", name)
	}
	return h, nil
}
