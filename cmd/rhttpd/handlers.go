package main

import (
	"slices"
	"strconv"
	"sync"

	"github.com/joeydtaylor/steeze-rhttp/pkg/codec"
	"github.com/joeydtaylor/steeze-rhttp/pkg/core"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/auth"
)

func ping(_ *message.Request, res *core.ResponseBuilder) string {
	return res.Status(200).Send("pong")
}

func echo(req *message.Request, res *core.ResponseBuilder) string {
	ct := req.Header.Get(message.HeaderContentType)
	if ct == "" {
		ct = "text/plain"
	}
	return res.ContentType(ct).Send(req.Body)
}

func whoami(a *auth.Middleware) core.Handler {
	return func(req *message.Request, res *core.ResponseBuilder) string {
		return res.JSON(a.GetUser(req))
	}
}

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`
}

// itemStore backs the items endpoints.
type itemStore struct {
	mu    sync.RWMutex
	items []item
	next  int
}

func newItemStore() *itemStore { return &itemStore{next: 1} }

// list answers GET /items, filtered by ?tag= when present.
func (s *itemStore) list(req *message.Request, res *core.ResponseBuilder) string {
	tag, filter := req.Query.Get("tag")

	s.mu.RLock()
	out := make([]item, 0, len(s.items))
	for _, it := range s.items {
		if !filter || it.Tag == tag {
			out = append(out, it)
		}
	}
	s.mu.RUnlock()
	return res.JSON(out)
}

// create answers POST /items with the stored item.
func (s *itemStore) create(req *message.Request, res *core.ResponseBuilder) string {
	var in item
	if err := codec.DecodeBody(codec.JSONStrict, req.Body, &in); err != nil || in.Name == "" {
		return res.Status(400).Send("item needs a JSON body with a name")
	}

	s.mu.Lock()
	in.ID = s.next
	s.next++
	s.items = append(s.items, in)
	s.mu.Unlock()

	return res.Status(201).Set("Location", "/items?id="+strconv.Itoa(in.ID)).JSON(in)
}

// remove answers DELETE /items?id=N; an unknown id declines.
func (s *itemStore) remove(req *message.Request, res *core.ResponseBuilder) string {
	raw, _ := req.Query.Get("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return res.Status(400).Send("id must be an integer")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(it item) bool { return it.ID == id })
	if i < 0 {
		return ""
	}
	s.items = slices.Delete(s.items, i, i+1)
	return res.Status(204).Send("")
}

func registerHandlers(a *auth.Middleware) {
	store := newItemStore()
	core.Register("ping", ping)
	core.Register("echo", echo)
	core.Register("whoami", whoami(a))
	core.Register("items.list", store.list)
	core.Register("items.create", store.create)
	core.Register("items.delete", store.remove)
}
