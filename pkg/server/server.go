// Package server runs a dispatcher against a pub/sub bus: request frames in,
// response and rejection frames out, and heartbeat acknowledgements.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/joeydtaylor/steeze-rhttp/pkg/core"
	"github.com/joeydtaylor/steeze-rhttp/pkg/transport/pubsub"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Server owns the request and heartbeat subscriptions for one identity.
type Server struct {
	bus      pubsub.Bus
	disp     *core.Dispatcher
	id       core.Identity
	channels pubsub.Channels
	workers  int
	log      *zap.Logger
}

type Option func(*Server)

func WithChannels(c pubsub.Channels) Option { return func(s *Server) { s.channels = c } }

// WithWorkers sets how many frames are dispatched concurrently. Values below 1
// mean one worker, which preserves arrival order of responses.
func WithWorkers(n int) Option {
	return func(s *Server) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func New(bus pubsub.Bus, disp *core.Dispatcher, id core.Identity, opts ...Option) *Server {
	s := &Server{
		bus:      bus,
		disp:     disp,
		id:       id,
		channels: pubsub.DefaultChannels(),
		workers:  1,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Identity() core.Identity { return s.id }

func (s *Server) Channels() pubsub.Channels { return s.channels }

// Serve subscribes and processes frames until ctx is cancelled or a
// subscription ends. It returns nil on cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s.bus == nil || s.disp == nil {
		return errors.New("server: bus and dispatcher are required")
	}

	reqSub, err := s.bus.Subscribe(ctx, s.channels.Request)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channels.Request, err)
	}
	hbSub, err := s.bus.Subscribe(ctx, s.channels.Heartbeat)
	if err != nil {
		_ = reqSub.Close()
		return fmt.Errorf("subscribe %s: %w", s.channels.Heartbeat, err)
	}

	s.log.Info("rhttp server listening",
		zap.String("name", s.id.Name),
		zap.String("description", s.id.Description),
		zap.String("requestChannel", s.channels.Request),
		zap.String("heartbeatChannel", s.channels.Heartbeat),
		zap.Int("workers", s.workers),
		zap.Int("endpoints", s.disp.Registry().Len()),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cancel()
			s.requestLoop(ctx, reqSub.Messages())
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		s.heartbeatLoop(ctx, hbSub.Messages())
	}()

	<-ctx.Done()
	closeErr := multierr.Combine(reqSub.Close(), hbSub.Close())
	wg.Wait()

	s.log.Info("rhttp server stopped", zap.String("name", s.id.Name))
	return closeErr
}

func (s *Server) requestLoop(ctx context.Context, in <-chan pubsub.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			s.handle(ctx, m.Payload)
		}
	}
}

func (s *Server) handle(ctx context.Context, raw string) {
	out, err := s.disp.Dispatch(raw)
	if err != nil {
		s.log.Warn("frame dispatch error",
			zap.String("outcome", out.Kind.String()),
			zap.Error(err),
		)
	}

	var channel string
	switch out.Kind {
	case core.Responded:
		channel = s.channels.Response
	case core.Rejected:
		channel = s.channels.Reject
	default:
		return
	}
	if err := s.bus.Publish(ctx, channel, out.Payload); err != nil && ctx.Err() == nil {
		s.log.Error("publish failed", zap.String("channel", channel), zap.Error(err))
	}
}

// Heartbeat payloads are ignored; every message triggers one acknowledgement.
func (s *Server) heartbeatLoop(ctx context.Context, in <-chan pubsub.Message) {
	ack := s.id.Ack()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-in:
			if !ok {
				return
			}
			if err := s.bus.Publish(ctx, s.channels.Acknowledge, ack); err != nil && ctx.Err() == nil {
				s.log.Error("acknowledge failed", zap.Error(err))
			}
		}
	}
}
