package pubsub

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisOptions selects the Redis server carrying the channels.
type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int
	TLS      bool
}

// RedisBus is a Bus over Redis PUBLISH/SUBSCRIBE.
type RedisBus struct {
	client *redis.Client
	owned  bool
}

// NewRedisBus connects and pings the server.
func NewRedisBus(ctx context.Context, o RedisOptions) (*RedisBus, error) {
	opts := &redis.Options{
		Addr:     o.Addr,
		Username: o.Username,
		Password: o.Password,
		DB:       o.DB,
	}
	if o.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", o.Addr, err)
	}
	return &RedisBus{client: c, owned: true}, nil
}

// NewRedisBusFromClient wraps an existing client; Close leaves it open.
func NewRedisBusFromClient(c *redis.Client) *RedisBus {
	return &RedisBus{client: c}
}

func (b *RedisBus) Publish(ctx context.Context, channel, payload string) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

// Subscribe waits for the server to confirm the subscription before returning.
func (b *RedisBus) Subscribe(ctx context.Context, channels ...string) (Subscription, error) {
	ps := b.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %v: %w", channels, err)
	}

	s := &redisSub{ps: ps, ch: make(chan Message, subscriberBufferSize), done: make(chan struct{})}
	go s.pump()
	return s, nil
}

func (b *RedisBus) Close() error {
	if !b.owned {
		return nil
	}
	return b.client.Close()
}

type redisSub struct {
	ps   *redis.PubSub
	ch   chan Message
	done chan struct{}
	once sync.Once
}

func (s *redisSub) pump() {
	defer close(s.ch)
	in := s.ps.Channel()
	for {
		select {
		case m, ok := <-in:
			if !ok {
				return
			}
			select {
			case s.ch <- Message{Channel: m.Channel, Payload: m.Payload}:
			case <-s.done:
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *redisSub) Messages() <-chan Message { return s.ch }

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
