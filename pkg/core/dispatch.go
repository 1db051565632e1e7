package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

// OutcomeKind says what the transport should do with a dispatched frame.
type OutcomeKind uint8

const (
	// Ignored frames are dropped (responses, unparseable input).
	Ignored OutcomeKind = iota
	// Responded carries a response frame for the response channel.
	Responded
	// Rejected carries the request's X-Socket-ID for the reject channel.
	Rejected
)

func (k OutcomeKind) String() string {
	switch k {
	case Responded:
		return "responded"
	case Rejected:
		return "rejected"
	default:
		return "ignored"
	}
}

// RejectReason is recorded for observers only; both reasons publish the same signal.
type RejectReason uint8

const (
	NotRejected RejectReason = iota
	NoEndpoint
	Declined
)

func (r RejectReason) String() string {
	switch r {
	case NoEndpoint:
		return "no_endpoint"
	case Declined:
		return "declined"
	default:
		return ""
	}
}

// Outcome is the result of dispatching one frame.
type Outcome struct {
	Kind    OutcomeKind
	Payload string
	Reason  RejectReason
	// Request is nil when the frame was not a request.
	Request *message.Request
}

// ErrHandlerPanic wraps a recovered handler panic.
var ErrHandlerPanic = errors.New("core: handler panicked")

// Observer is notified after every dispatch.
type Observer interface {
	Observe(o Outcome, elapsed time.Duration)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(o Outcome, elapsed time.Duration)

func (f ObserverFunc) Observe(o Outcome, elapsed time.Duration) { f(o, elapsed) }

// Dispatcher routes raw request frames to registry endpoints. It holds no
// per-request state, so concurrent Dispatch calls are independent.
type Dispatcher struct {
	reg *Registry
	obs []Observer
}

func NewDispatcher(reg *Registry, obs ...Observer) *Dispatcher {
	if reg == nil {
		reg = &Registry{}
	}
	return &Dispatcher{reg: reg, obs: obs}
}

// Registry returns the registry the dispatcher routes against.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Dispatch parses raw and runs the first matching endpoint. A non-nil error
// accompanies Ignored for malformed frames and Rejected for handler panics.
func (d *Dispatcher) Dispatch(raw string) (out Outcome, err error) {
	start := time.Now()
	defer func() {
		for _, o := range d.obs {
			o.Observe(out, time.Since(start))
		}
	}()

	m, err := message.Parse(raw)
	if err != nil {
		return Outcome{Kind: Ignored}, err
	}
	req, ok := m.(*message.Request)
	if !ok {
		return Outcome{Kind: Ignored}, nil
	}

	ep, ok := d.reg.Lookup(req.Method, req.Path)
	if !ok {
		return reject(req, NoEndpoint), nil
	}

	frame, err := invoke(ep.Handler, req)
	if err != nil {
		return reject(req, Declined), err
	}
	if frame == "" {
		return reject(req, Declined), nil
	}
	return Outcome{Kind: Responded, Payload: frame, Request: req}, nil
}

func invoke(h Handler, req *message.Request) (frame string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %s %s: %v", ErrHandlerPanic, req.Method, req.Path, p)
		}
	}()
	return h(req, NewResponseBuilder(req)), nil
}

func reject(req *message.Request, why RejectReason) Outcome {
	return Outcome{Kind: Rejected, Payload: req.SocketID, Reason: why, Request: req}
}
