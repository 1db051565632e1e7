package core

import (
	"context"
	"time"
)

// RelayRequest is one publish into a downstream pipeline. Topic labels the
// publish; the forward relay decides where bytes actually go.
type RelayRequest struct {
	Topic string
	Body  []byte
}

// RelayClient publishes request bodies to a downstream pipeline.
type RelayClient interface {
	Publish(ctx context.Context, rr RelayRequest) error
}

type NoopRelay struct{}

func (NoopRelay) Publish(context.Context, RelayRequest) error {
	return ErrNoRelay
}

var (
	ErrNoRelay = errorString("relay: no client configured")
	ErrTapFull = errorString("relay tap: queue full")
)

type errorString string

func (e errorString) Error() string { return string(e) }

const (
	defaultTapQueue   = 256
	defaultTapTimeout = time.Second
)

// RelayTap is an Observer that copies response frames to a relay topic.
// Observe only enqueues; Run does the publishing. When the queue is full the
// frame is dropped and ErrTapFull is reported.
type RelayTap struct {
	client  RelayClient
	topic   string
	timeout time.Duration
	onError func(error)
	queue   chan string
}

type TapOption func(*RelayTap)

// WithTapTimeout bounds each publish. Default 1s.
func WithTapTimeout(d time.Duration) TapOption {
	return func(t *RelayTap) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithTapQueue sets how many frames may wait for Run. Default 256.
func WithTapQueue(n int) TapOption {
	return func(t *RelayTap) {
		if n > 0 {
			t.queue = make(chan string, n)
		}
	}
}

// WithTapErrorHandler receives publish failures and drops. It must not block.
func WithTapErrorHandler(fn func(error)) TapOption {
	return func(t *RelayTap) { t.onError = fn }
}

func NewRelayTap(c RelayClient, topic string, opts ...TapOption) *RelayTap {
	t := &RelayTap{client: c, topic: topic, timeout: defaultTapTimeout}
	for _, o := range opts {
		o(t)
	}
	if t.queue == nil {
		t.queue = make(chan string, defaultTapQueue)
	}
	return t
}

func (t *RelayTap) Observe(o Outcome, _ time.Duration) {
	if t.client == nil || o.Kind != Responded {
		return
	}
	select {
	case t.queue <- o.Payload:
	default:
		t.fail(ErrTapFull)
	}
}

// Run publishes queued frames until ctx is done. Frames still queued at that
// point are dropped.
func (t *RelayTap) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-t.queue:
			t.publish(ctx, frame)
		}
	}
}

func (t *RelayTap) publish(ctx context.Context, frame string) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	if err := t.client.Publish(ctx, RelayRequest{Topic: t.topic, Body: []byte(frame)}); err != nil {
		t.fail(err)
	}
}

func (t *RelayTap) fail(err error) {
	if t.onError != nil {
		t.onError(err)
	}
}
