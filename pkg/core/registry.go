package core

import "github.com/joeydtaylor/steeze-rhttp/pkg/message"

// Endpoint binds an exact (method, path) pair to a handler.
type Endpoint struct {
	Method  message.Method
	Path    string
	Handler Handler
}

// RegistryBuilder collects endpoints during setup. Build freezes them into
// a Registry that is safe to share across goroutines.
type RegistryBuilder struct {
	endpoints []Endpoint
	mws       []Middleware
}

func NewRegistryBuilder() *RegistryBuilder { return &RegistryBuilder{} }

// Use appends middleware applied to every endpoint at Build time.
// The first middleware is the outermost.
func (b *RegistryBuilder) Use(mw ...Middleware) *RegistryBuilder {
	for _, m := range mw {
		if m != nil {
			b.mws = append(b.mws, m)
		}
	}
	return b
}

// Handle appends a binding. Later bindings for the same pair never win.
func (b *RegistryBuilder) Handle(method message.Method, path string, h Handler) *RegistryBuilder {
	if h == nil {
		panic("core: nil handler for " + string(method) + " " + path)
	}
	b.endpoints = append(b.endpoints, Endpoint{Method: method, Path: path, Handler: h})
	return b
}

func (b *RegistryBuilder) Get(path string, h Handler) *RegistryBuilder {
	return b.Handle(message.MethodGet, path, h)
}
func (b *RegistryBuilder) Head(path string, h Handler) *RegistryBuilder {
	return b.Handle(message.MethodHead, path, h)
}
func (b *RegistryBuilder) Post(path string, h Handler) *RegistryBuilder {
	return b.Handle(message.MethodPost, path, h)
}
func (b *RegistryBuilder) Put(path string, h Handler) *RegistryBuilder {
	return b.Handle(message.MethodPut, path, h)
}
func (b *RegistryBuilder) Delete(path string, h Handler) *RegistryBuilder {
	return b.Handle(message.MethodDelete, path, h)
}
func (b *RegistryBuilder) Connect(path string, h Handler) *RegistryBuilder {
	return b.Handle(message.MethodConnect, path, h)
}
func (b *RegistryBuilder) Options(path string, h Handler) *RegistryBuilder {
	return b.Handle(message.MethodOptions, path, h)
}
func (b *RegistryBuilder) Trace(path string, h Handler) *RegistryBuilder {
	return b.Handle(message.MethodTrace, path, h)
}
func (b *RegistryBuilder) Patch(path string, h Handler) *RegistryBuilder {
	return b.Handle(message.MethodPatch, path, h)
}

// Build returns the frozen registry. The builder may keep being used; later
// changes do not affect registries already built.
func (b *RegistryBuilder) Build() *Registry {
	eps := make([]Endpoint, len(b.endpoints))
	for i, ep := range b.endpoints {
		h := ep.Handler
		for j := len(b.mws) - 1; j >= 0; j-- {
			h = b.mws[j](h)
		}
		ep.Handler = h
		eps[i] = ep
	}
	return &Registry{endpoints: eps}
}

// Registry is an immutable, ordered endpoint list.
type Registry struct {
	endpoints []Endpoint
}

// Lookup returns the earliest endpoint whose method and path equal the
// arguments exactly.
func (r *Registry) Lookup(method message.Method, path string) (Endpoint, bool) {
	for _, ep := range r.endpoints {
		if ep.Method == method && ep.Path == path {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// Endpoints returns the bindings in registration order.
func (r *Registry) Endpoints() []Endpoint {
	return append([]Endpoint(nil), r.endpoints...)
}

func (r *Registry) Len() int { return len(r.endpoints) }
