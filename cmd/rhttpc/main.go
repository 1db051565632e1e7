// Command rhttpc sends one request frame over Redis, or lists live servers.
//
//	rhttpc -redis 127.0.0.1:6379 GET /ping
//	rhttpc -d '{"name":"a"}' -H 'Content-Type: application/json' POST /items
//	rhttpc -discover
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeydtaylor/steeze-rhttp/pkg/client"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
	"github.com/joeydtaylor/steeze-rhttp/pkg/transport/pubsub"
	"go.uber.org/zap"
)

type headerFlags []string

func (h *headerFlags) String() string     { return strings.Join(*h, ", ") }
func (h *headerFlags) Set(v string) error { *h = append(*h, v); return nil }

func main() {
	var (
		addr     = flag.String("redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "redis address")
		timeout  = flag.Duration("timeout", 5*time.Second, "request timeout")
		body     = flag.String("d", "", "request body")
		discover = flag.Bool("discover", false, "list servers answering the heartbeat")
		headers  headerFlags
	)
	flag.Var(&headers, "H", "header 'Name: value' (repeatable)")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	bus, err := pubsub.NewRedisBus(ctx, pubsub.RedisOptions{Addr: *addr})
	if err != nil {
		log.Fatal("connect failed", zap.Error(err))
	}
	defer bus.Close()

	c, err := client.New(ctx, bus, client.WithLogger(log))
	if err != nil {
		log.Fatal("client init failed", zap.Error(err))
	}
	defer c.Close()

	if *discover {
		ids, err := c.Discover(ctx, time.Second)
		if err != nil {
			log.Fatal("discover failed", zap.Error(err))
		}
		for _, id := range ids {
			fmt.Printf("%s\t%s\n", id.Name, id.Description)
		}
		return
	}

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: rhttpc [flags] METHOD TARGET")
		os.Exit(2)
	}
	method, ok := message.ParseMethod(strings.ToUpper(flag.Arg(0)))
	if !ok {
		log.Fatal("unknown method", zap.String("method", flag.Arg(0)))
	}

	req := message.NewRequest(method, flag.Arg(1))
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			log.Fatal("bad header", zap.String("header", h))
		}
		req.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if *body != "" {
		req.SetBody(*body)
	}

	res, err := c.Do(ctx, req)
	if err != nil {
		log.Fatal("request failed", zap.Error(err))
	}
	fmt.Print(message.Serialize(res))
	fmt.Println()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
