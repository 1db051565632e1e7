package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

// HandlerType selects how a route is answered.
type HandlerType string

const (
	// HandlerInproc binds a route to a handler registered with core.Register.
	HandlerInproc HandlerType = "inproc"
	// HandlerRelayPublish forwards the request body to the relay and answers 202.
	HandlerRelayPublish HandlerType = "relay.publish"
)

// Route describes a single endpoint binding. Routes register in file order.
type Route struct {
	Path    string   `toml:"path"`
	Method  string   `toml:"method"`
	Guard   Guard    `toml:"guard"`
	Policy  Policy   `toml:"policy"`
	Handler HSpec    `toml:"handler"`
	Tags    []string `toml:"tags"`
}

type Guard struct {
	Roles       []string `toml:"roles"`
	Users       []string `toml:"users"`
	RequireAuth bool     `toml:"require_auth"`
}

// Active reports whether the guard restricts anything.
func (g Guard) Active() bool {
	return g.RequireAuth || len(g.Users) > 0 || len(g.Roles) > 0
}

type Policy struct {
	TimeoutMS int `toml:"timeout_ms"` // relay publish deadline
}

type HSpec struct {
	Type  HandlerType `toml:"type"`
	Name  string      `toml:"name"`
	Relay *RelaySpec  `toml:"relay"`
}

type RelaySpec struct {
	Topic string `toml:"topic"`
}

// normalize path/method. Paths are matched exactly, so they are not cleaned:
// "/a" and "/a/" stay distinct.
func (r *Route) normalize() error {
	r.Path = strings.TrimSpace(r.Path)
	if r.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(r.Path, "/") {
		r.Path = "/" + r.Path
	}
	if strings.ContainsAny(r.Path, "? \t") {
		return errors.New("path must not contain '?' or whitespace")
	}
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		r.Method = "GET"
	}
	if r.Handler.Type == "" {
		r.Handler.Type = HandlerInproc
	}
	return nil
}

// validate fields that are independent of global state.
func (r *Route) validate() error {
	if _, ok := message.ParseMethod(r.Method); !ok {
		return fmt.Errorf("unsupported method %q", r.Method)
	}
	switch r.Handler.Type {
	case HandlerInproc:
		if strings.TrimSpace(r.Handler.Name) == "" {
			return errors.New("handler.name required for inproc")
		}
	case HandlerRelayPublish:
		if r.Handler.Relay == nil || strings.TrimSpace(r.Handler.Relay.Topic) == "" {
			return errors.New("handler.relay.topic required for relay")
		}
	default:
		return fmt.Errorf("unknown handler type %q", r.Handler.Type)
	}
	if r.Policy.TimeoutMS < 0 {
		return errors.New("policy.timeout_ms must be >= 0")
	}
	return nil
}
