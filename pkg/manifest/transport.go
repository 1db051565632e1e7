package manifest

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TransportRedis  = "redis"
	TransportMemory = "memory"
)

// Transport selects the pub/sub bus and the channel names.
type Transport struct {
	Kind     string   `toml:"kind"` // "redis" (default) | "memory"
	Redis    Redis    `toml:"redis"`
	Channels Channels `toml:"channels"`
}

type Redis struct {
	Addr     string `toml:"addr"` // default "127.0.0.1:6379"
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TLS      bool   `toml:"tls"`
}

// Channels names the five channels of the wire contract. Empty names take
// the defaults REQUEST_PIPE, RESPONSE_PIPE, REJECT_PIPE, HEARTBEAT and
// ACKNOWLEDGE_PIPE.
type Channels struct {
	Request     string `toml:"request"`
	Response    string `toml:"response"`
	Reject      string `toml:"reject"`
	Heartbeat   string `toml:"heartbeat"`
	Acknowledge string `toml:"acknowledge"`
}

func (t *Transport) validate() error {
	t.Kind = strings.ToLower(strings.TrimSpace(t.Kind))
	switch t.Kind {
	case "":
		t.Kind = TransportRedis
	case TransportRedis, TransportMemory:
	default:
		return fmt.Errorf("unknown kind %q", t.Kind)
	}
	if t.Kind == TransportRedis && strings.TrimSpace(t.Redis.Addr) == "" {
		t.Redis.Addr = "127.0.0.1:6379"
	}
	if t.Redis.DB < 0 {
		return errors.New("redis.db must be >= 0")
	}

	ch := &t.Channels
	for _, f := range []struct {
		p   *string
		def string
	}{
		{&ch.Request, "REQUEST_PIPE"},
		{&ch.Response, "RESPONSE_PIPE"},
		{&ch.Reject, "REJECT_PIPE"},
		{&ch.Heartbeat, "HEARTBEAT"},
		{&ch.Acknowledge, "ACKNOWLEDGE_PIPE"},
	} {
		*f.p = strings.TrimSpace(*f.p)
		if *f.p == "" {
			*f.p = f.def
		}
	}
	if ch.Request == ch.Heartbeat {
		return errors.New("channels.request and channels.heartbeat must differ")
	}
	return nil
}
