package core

import (
	"strings"
	"testing"

	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
	"github.com/joeydtaylor/steeze-rhttp/pkg/status"
)

func newReq(t *testing.T, raw string) *message.Request {
	t.Helper()
	req, err := message.ParseRequest(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return req
}

func TestResponseBuilderDefaults(t *testing.T) {
	b := NewResponseBuilder(newReq(t, "GET / HTTP/1.1\r\n\r\n"))
	res := b.Response()
	if res.StatusCode != 200 || res.StatusMessage != "OK" {
		t.Errorf("status = %d %q", res.StatusCode, res.StatusMessage)
	}
	if res.Header.Get("Content-Length") != "0" || res.Body != "" {
		t.Errorf("defaults = %+v", res)
	}
}

func TestResponseBuilderStatusStaysInSync(t *testing.T) {
	b := NewResponseBuilder(newReq(t, "GET / HTTP/1.1\r\n\r\n"))
	for _, code := range []int{201, 404, 999, -3, 500, 302} {
		b.Status(code)
		res := b.Response()
		if res.StatusCode != code || res.StatusMessage != status.Text(code) {
			t.Fatalf("after Status(%d): %d %q", code, res.StatusCode, res.StatusMessage)
		}
	}
}

func TestResponseBuilderHeaders(t *testing.T) {
	b := NewResponseBuilder(newReq(t, "GET / HTTP/1.1\r\n\r\n"))
	b.ContentType("text/plain").
		ContentType("application/json").
		Header(map[string]string{"X-B": "2", "X-A": "1"}).
		Header(map[string]string{"X-A": "override"})

	res := b.Response()
	if got := res.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := res.Header.Get("X-A"); got != "override" {
		t.Errorf("X-A = %q", got)
	}
	names := res.Header.Names()
	want := []string{"Content-Length", "Content-Type", "X-A", "X-B"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestResponseBuilderSend(t *testing.T) {
	req := newReq(t, "GET /ping HTTP/1.1\r\nX-Socket-ID: abc\r\n\r\n")
	frame := NewResponseBuilder(req).Status(200).Send("pong")

	want := "HTTP/1.1 200 OK\r\nContent-Length: 4\r\nX-Socket-ID: abc\r\n\r\npong"
	if frame != want {
		t.Errorf("frame =\n%q\nwant\n%q", frame, want)
	}
}

func TestResponseBuilderSendTwiceLastWins(t *testing.T) {
	req := newReq(t, "GET / HTTP/1.1\r\nX-Socket-ID: s\r\n\r\n")
	b := NewResponseBuilder(req)
	b.Send("first body")
	frame := b.Send("ok")

	res, err := message.ParseResponse(frame)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Body != "ok" || res.Header.Get("Content-Length") != "2" {
		t.Errorf("got %+v", res)
	}
	if res.Header.Len() != 2 {
		t.Errorf("headers duplicated: %v", res.Header.Names())
	}
}

func TestResponseBuilderSendWithoutSocketID(t *testing.T) {
	frame := NewResponseBuilder(newReq(t, "GET / HTTP/1.1\r\n\r\n")).Send("x")
	if strings.Contains(frame, message.HeaderSocketID) {
		t.Errorf("frame carries a socket id: %q", frame)
	}
}

func TestResponseBuilderContentLengthIsBytes(t *testing.T) {
	frame := NewResponseBuilder(newReq(t, "GET / HTTP/1.1\r\n\r\n")).Send("héllo")
	res, _ := message.ParseResponse(frame)
	if res.Header.Get("Content-Length") != "6" {
		t.Errorf("Content-Length = %q", res.Header.Get("Content-Length"))
	}
}

func TestResponseBuilderJSON(t *testing.T) {
	req := newReq(t, "GET / HTTP/1.1\r\nX-Socket-ID: j\r\n\r\n")
	frame := NewResponseBuilder(req).JSON(map[string]any{"a": 1, "b": "<x>"})
	res, err := message.ParseResponse(frame)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", res.Header.Get("Content-Type"))
	}
	if res.Body != `{"a":1,"b":"<x>"}` {
		t.Errorf("body = %q", res.Body)
	}

	bad := NewResponseBuilder(req).JSON(func() {})
	res, _ = message.ParseResponse(bad)
	if res.StatusCode != 500 {
		t.Errorf("unencodable value: status %d", res.StatusCode)
	}
}
