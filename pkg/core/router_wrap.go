package core

import (
	"context"
	"fmt"
	"time"

	manifest "github.com/joeydtaylor/steeze-rhttp/pkg/manifest"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

const defaultRelayTimeout = 5 * time.Second

func wrapRoute(rt manifest.Route, d BuildDeps) (Handler, error) {
	switch rt.Handler.Type {
	case manifest.HandlerInproc, "":
		return mustLookup(rt.Handler.Name)

	case manifest.HandlerRelayPublish:
		if rt.Handler.Relay == nil || rt.Handler.Relay.Topic == "" {
			return nil, fmt.Errorf("relay topic required")
		}
		topic := rt.Handler.Relay.Topic
		timeout := defaultRelayTimeout
		if rt.Policy.TimeoutMS > 0 {
			timeout = time.Duration(rt.Policy.TimeoutMS) * time.Millisecond
		}
		return relayPublish(d.Relay, topic, timeout), nil

	default:
		return nil, fmt.Errorf("unknown handler type %q", rt.Handler.Type)
	}
}

func relayPublish(rc RelayClient, topic string, timeout time.Duration) Handler {
	return func(req *message.Request, res *ResponseBuilder) string {
		if rc == nil {
			return res.Status(502).Send("relay unavailable")
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := rc.Publish(ctx, RelayRequest{Topic: topic, Body: []byte(req.Body)}); err != nil {
			return res.Status(502).Send(err.Error())
		}
		return res.Status(202).Send("")
	}
}
