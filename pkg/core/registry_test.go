package core

import (
	"testing"

	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

func constant(body string) Handler {
	return func(_ *message.Request, res *ResponseBuilder) string { return res.Send(body) }
}

func TestRegistryAliases(t *testing.T) {
	b := NewRegistryBuilder()
	b.Get("/", constant("get")).
		Head("/", constant("head")).
		Post("/", constant("post")).
		Put("/", constant("put")).
		Delete("/", constant("delete")).
		Connect("/", constant("connect")).
		Options("/", constant("options")).
		Trace("/", constant("trace")).
		Patch("/", constant("patch"))
	reg := b.Build()

	if reg.Len() != len(message.Methods) {
		t.Fatalf("Len = %d", reg.Len())
	}
	for i, ep := range reg.Endpoints() {
		if ep.Method != message.Methods[i] || ep.Path != "/" {
			t.Errorf("endpoint %d = %s %s", i, ep.Method, ep.Path)
		}
	}
}

func TestRegistryLookupExactAndFirstWins(t *testing.T) {
	reg := NewRegistryBuilder().
		Get("/a", constant("first")).
		Get("/a", constant("second")).
		Get("/a/", constant("slash")).
		Build()

	ep, ok := reg.Lookup(message.MethodGet, "/a")
	if !ok {
		t.Fatal("no match for /a")
	}
	frame := ep.Handler(message.NewRequest(message.MethodGet, "/a"), NewResponseBuilder(message.NewRequest(message.MethodGet, "/a")))
	res, _ := message.ParseResponse(frame)
	if res.Body != "first" {
		t.Errorf("body = %q, want first", res.Body)
	}

	for _, miss := range []struct {
		m message.Method
		p string
	}{
		{message.MethodPost, "/a"},
		{message.MethodGet, "/A"},
		{message.MethodGet, "/a/b"},
		{message.MethodGet, "a"},
	} {
		if _, ok := reg.Lookup(miss.m, miss.p); ok {
			t.Errorf("%s %s should not match", miss.m, miss.p)
		}
	}
}

func TestRegistryBuildIsFrozen(t *testing.T) {
	b := NewRegistryBuilder().Get("/one", constant("1"))
	reg := b.Build()
	b.Get("/two", constant("2"))

	if _, ok := reg.Lookup(message.MethodGet, "/two"); ok {
		t.Error("registry changed after Build")
	}
	eps := reg.Endpoints()
	eps[0].Path = "/mutated"
	if _, ok := reg.Lookup(message.MethodGet, "/one"); !ok {
		t.Error("Endpoints leaked internal slice")
	}
}

func TestRegistryMiddlewareOrder(t *testing.T) {
	var trace []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(req *message.Request, res *ResponseBuilder) string {
				trace = append(trace, name)
				return next(req, res)
			}
		}
	}
	reg := NewRegistryBuilder().
		Use(mw("outer"), nil, mw("inner")).
		Get("/", func(_ *message.Request, res *ResponseBuilder) string {
			trace = append(trace, "handler")
			return res.Send("")
		}).
		Build()

	ep, _ := reg.Lookup(message.MethodGet, "/")
	req := message.NewRequest(message.MethodGet, "/")
	ep.Handler(req, NewResponseBuilder(req))

	want := []string{"outer", "inner", "handler"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v", trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("trace = %v, want %v", trace, want)
			break
		}
	}
}

func TestRegistryNilHandlerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewRegistryBuilder().Get("/", nil)
}
