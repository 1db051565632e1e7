// Package pubsub is the channel transport frames travel over.
package pubsub

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed bus.
var ErrClosed = errors.New("pubsub: bus closed")

// Message is one payload delivered on a channel.
type Message struct {
	Channel string
	Payload string
}

// Subscription delivers messages until Close. Messages is closed afterwards.
type Subscription interface {
	Messages() <-chan Message
	Close() error
}

// Bus publishes payloads to named channels and fans them out to subscribers.
type Bus interface {
	Publish(ctx context.Context, channel, payload string) error
	Subscribe(ctx context.Context, channels ...string) (Subscription, error)
	Close() error
}

// Channels names the channels of the request/response wire contract.
type Channels struct {
	Request     string
	Response    string
	Reject      string
	Heartbeat   string
	Acknowledge string
}

// DefaultChannels returns the channel names peers use unless configured otherwise.
func DefaultChannels() Channels {
	return Channels{
		Request:     "REQUEST_PIPE",
		Response:    "RESPONSE_PIPE",
		Reject:      "REJECT_PIPE",
		Heartbeat:   "HEARTBEAT",
		Acknowledge: "ACKNOWLEDGE_PIPE",
	}
}
