// Package client issues request frames over a pub/sub bus and correlates the
// replies by X-Socket-ID.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-rhttp/pkg/core"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
	"github.com/joeydtaylor/steeze-rhttp/pkg/transport/pubsub"
	"go.uber.org/zap"
)

var (
	// ErrRejected is returned when a server published the request's socket id
	// on the reject channel.
	ErrRejected = errors.New("client: request rejected")
	ErrClosed   = errors.New("client: closed")
)

type reply struct {
	res *message.Response
	err error
}

// Client multiplexes concurrent requests over a single subscription to the
// response and reject channels.
type Client struct {
	bus      pubsub.Bus
	channels pubsub.Channels
	log      *zap.Logger
	newID    func() string

	sub pubsub.Subscription

	mu      sync.Mutex
	pending map[string]chan reply
	closed  bool
	done    chan struct{}
}

type Option func(*Client)

func WithChannels(c pubsub.Channels) Option { return func(cl *Client) { cl.channels = c } }

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// WithSocketIDs overrides the socket id generator.
func WithSocketIDs(fn func() string) Option {
	return func(cl *Client) {
		if fn != nil {
			cl.newID = fn
		}
	}
}

// New subscribes to the response and reject channels.
func New(ctx context.Context, bus pubsub.Bus, opts ...Option) (*Client, error) {
	c := &Client{
		bus:      bus,
		channels: pubsub.DefaultChannels(),
		log:      zap.NewNop(),
		newID:    uuid.NewString,
		pending:  map[string]chan reply{},
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	sub, err := bus.Subscribe(ctx, c.channels.Response, c.channels.Reject)
	if err != nil {
		return nil, fmt.Errorf("client subscribe: %w", err)
	}
	c.sub = sub
	go c.route()
	return c, nil
}

func (c *Client) route() {
	defer close(c.done)
	for m := range c.sub.Messages() {
		switch m.Channel {
		case c.channels.Reject:
			c.deliver(m.Payload, reply{err: ErrRejected})
		case c.channels.Response:
			res, err := message.ParseResponse(m.Payload)
			if err != nil {
				c.log.Debug("dropping unparseable response", zap.Error(err))
				continue
			}
			c.deliver(res.SocketID, reply{res: res})
		}
	}
}

// deliver hands r to the waiter for id, if any. Only the first reply counts.
func (c *Client) deliver(id string, r reply) {
	if id == "" {
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if ok {
		ch <- r
	}
}

// Do publishes req under a fresh socket id and waits for the matching
// response or rejection. req itself is not modified.
func (c *Client) Do(ctx context.Context, req *message.Request) (*message.Response, error) {
	out := req.Clone()
	id := c.newID()
	out.SetSocketID(id)

	ch := make(chan reply, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	forget := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	if err := c.bus.Publish(ctx, c.channels.Request, message.Serialize(out)); err != nil {
		forget()
		return nil, fmt.Errorf("publish request: %w", err)
	}

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %s %s", r.err, out.Method, out.Target())
		}
		return r.res, nil
	case <-ctx.Done():
		forget()
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

// Get is shorthand for Do with a GET request to target.
func (c *Client) Get(ctx context.Context, target string) (*message.Response, error) {
	return c.Do(ctx, message.NewRequest(message.MethodGet, target))
}

// Discover sends one heartbeat and collects acknowledgements for window.
// Duplicate names are reported once.
func (c *Client) Discover(ctx context.Context, window time.Duration) ([]core.Identity, error) {
	sub, err := c.bus.Subscribe(ctx, c.channels.Acknowledge)
	if err != nil {
		return nil, fmt.Errorf("subscribe acknowledgements: %w", err)
	}
	defer sub.Close()

	if err := c.bus.Publish(ctx, c.channels.Heartbeat, ""); err != nil {
		return nil, fmt.Errorf("publish heartbeat: %w", err)
	}

	timer := time.NewTimer(window)
	defer timer.Stop()

	var found []core.Identity
	seen := map[string]bool{}
	for {
		select {
		case m, ok := <-sub.Messages():
			if !ok {
				return found, nil
			}
			id, ok := core.ParseAck(m.Payload)
			if !ok || seen[id.Name] {
				continue
			}
			seen[id.Name] = true
			found = append(found, id)
		case <-timer.C:
			return found, nil
		case <-ctx.Done():
			return found, ctx.Err()
		}
	}
}

// Close unsubscribes. In-flight calls return ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	err := c.sub.Close()
	<-c.done
	return err
}
