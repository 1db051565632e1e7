package manifest

import (
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
)

func decode(t *testing.T, src string) (Config, error) {
	t.Helper()
	var c Config
	if err := toml.Unmarshal([]byte(src), &c); err != nil {
		t.Fatalf("toml: %v", err)
	}
	return c, c.Validate()
}

func TestValidateDefaults(t *testing.T) {
	c, err := decode(t, `
[[route]]
path = "ping"
handler = { name = "ping" }
`)
	if err != nil {
		t.Fatal(err)
	}
	rt := c.Routes[0]
	if rt.Path != "/ping" || rt.Method != "GET" || rt.Handler.Type != HandlerInproc {
		t.Errorf("route = %+v", rt)
	}
	if c.Server.Workers != 1 || c.Admin.Listen != ":4000" {
		t.Errorf("server/admin = %+v %+v", c.Server, c.Admin)
	}
	tr := c.Transport
	if tr.Kind != TransportRedis || tr.Redis.Addr != "127.0.0.1:6379" {
		t.Errorf("transport = %+v", tr)
	}
	want := Channels{"REQUEST_PIPE", "RESPONSE_PIPE", "REJECT_PIPE", "HEARTBEAT", "ACKNOWLEDGE_PIPE"}
	if tr.Channels != want {
		t.Errorf("channels = %+v", tr.Channels)
	}
}

func TestValidateKeepsExplicitValues(t *testing.T) {
	c, err := decode(t, `
[server]
name = "n1"
workers = 8

[transport]
kind = "Memory"

[transport.channels]
request = "rq"
acknowledge = " ak "

[[route]]
method = "patch"
path = "/a/"
guard = { roles = ["admin"] }
handler = { type = "relay.publish", relay = { topic = "t" } }
`)
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Workers != 8 || c.Transport.Kind != TransportMemory {
		t.Errorf("config = %+v", c)
	}
	if c.Transport.Channels.Request != "rq" || c.Transport.Channels.Acknowledge != "ak" || c.Transport.Channels.Reject != "REJECT_PIPE" {
		t.Errorf("channels = %+v", c.Transport.Channels)
	}
	rt := c.Routes[0]
	if rt.Method != "PATCH" || rt.Path != "/a/" || !rt.Guard.Active() {
		t.Errorf("route = %+v", rt)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name, src, want string
	}{
		{"no routes", `[server]
name = "x"`, "no routes"},
		{"bad method", `[[route]]
method = "FETCH"
path = "/x"
handler = { name = "h" }`, "unsupported method"},
		{"query in path", `[[route]]
path = "/x?y=1"
handler = { name = "h" }`, "must not contain"},
		{"missing name", `[[route]]
path = "/x"`, "handler.name required"},
		{"missing topic", `[[route]]
path = "/x"
handler = { type = "relay.publish" }`, "relay.topic required"},
		{"unknown type", `[[route]]
path = "/x"
handler = { type = "grpc", name = "h" }`, "unknown handler type"},
		{"negative timeout", `[[route]]
path = "/x"
policy = { timeout_ms = -1 }
handler = { name = "h" }`, "timeout_ms"},
		{"separator in name", `[server]
name = "a\u000Eb"
[[route]]
path = "/x"
handler = { name = "h" }`, "0x0E"},
		{"unknown transport", `[transport]
kind = "nats"
[[route]]
path = "/x"
handler = { name = "h" }`, "unknown kind"},
		{"same request and heartbeat", `[transport.channels]
request = "X"
heartbeat = "X"
[[route]]
path = "/x"
handler = { name = "h" }`, "must differ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Config
			if err := toml.Unmarshal([]byte(tc.src), &c); err != nil {
				t.Fatalf("toml: %v", err)
			}
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestShadowed(t *testing.T) {
	c, err := decode(t, `
[[route]]
path = "/a"
handler = { name = "one" }

[[route]]
method = "POST"
path = "/a"
handler = { name = "two" }

[[route]]
method = "get"
path = "a"
handler = { name = "three" }
`)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Shadowed()
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("shadowed = %v", got)
	}
}
