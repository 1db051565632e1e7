package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type blockingRelay struct {
	entered chan RelayRequest
}

func (b *blockingRelay) Publish(ctx context.Context, rr RelayRequest) error {
	b.entered <- rr
	<-ctx.Done()
	return ctx.Err()
}

func TestRelayTapCopiesResponses(t *testing.T) {
	rc := &fakeRelay{}
	tap := NewRelayTap(rc, "tap")
	d := NewDispatcher(pingRegistry(), tap)

	_, _ = d.Dispatch("GET /ping HTTP/1.1\r\nX-Socket-ID: t1\r\n\r\n")
	_, _ = d.Dispatch("GET /missing HTTP/1.1\r\nX-Socket-ID: t2\r\n\r\n")
	_, _ = d.Dispatch("garbage")

	if n := len(tap.queue); n != 1 {
		t.Fatalf("queued %d frames", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tap.Run(ctx)
		close(done)
	}()
	waitFor(t, func() bool {
		rc.mu.Lock()
		defer rc.mu.Unlock()
		return len(rc.got) == 1
	})
	cancel()
	<-done

	got := rc.got[0]
	if got.Topic != "tap" {
		t.Errorf("topic = %q", got.Topic)
	}
	if !strings.HasPrefix(string(got.Body), "HTTP/1.1 200 OK\r\n") || !strings.Contains(string(got.Body), "X-Socket-ID: t1") {
		t.Errorf("tap body = %q", got.Body)
	}
}

func TestRelayTapDoesNotDelayDispatch(t *testing.T) {
	rc := &blockingRelay{entered: make(chan RelayRequest, 4)}
	tap := NewRelayTap(rc, "tap", WithTapTimeout(time.Minute))
	d := NewDispatcher(pingRegistry(), tap)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tap.Run(ctx)

	for i := range 3 {
		start := time.Now()
		out, err := d.Dispatch("GET /ping HTTP/1.1\r\n\r\n")
		if err != nil || out.Kind != Responded {
			t.Fatalf("dispatch %d: %v %v", i, out.Kind, err)
		}
		if el := time.Since(start); el > 100*time.Millisecond {
			t.Fatalf("dispatch %d took %v with a stalled relay", i, el)
		}
	}

	select {
	case <-rc.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("relay never called")
	}
}

func TestRelayTapQueueFull(t *testing.T) {
	var mu sync.Mutex
	var errs []error
	tap := NewRelayTap(&fakeRelay{}, "tap", WithTapQueue(1), WithTapErrorHandler(func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}))
	d := NewDispatcher(pingRegistry(), tap)

	_, _ = d.Dispatch("GET /ping HTTP/1.1\r\n\r\n")
	_, _ = d.Dispatch("GET /ping HTTP/1.1\r\n\r\n")

	if len(errs) != 1 || !errors.Is(errs[0], ErrTapFull) {
		t.Errorf("errors = %v", errs)
	}
}

func TestRelayTapReportsPublishErrors(t *testing.T) {
	errc := make(chan error, 1)
	rc := &fakeRelay{err: errors.New("down")}
	tap := NewRelayTap(rc, "tap", WithTapErrorHandler(func(err error) { errc <- err }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tap.Run(ctx)

	tap.Observe(Outcome{Kind: Responded, Payload: "HTTP/1.1 200 OK\r\n\r\n"}, 0)
	select {
	case err := <-errc:
		if err.Error() != "down" {
			t.Errorf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no error reported")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
