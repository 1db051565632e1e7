// Command rhttpd serves manifest-defined endpoints over the pub/sub bus.
package main

import (
	"github.com/joeydtaylor/steeze-rhttp/pkg/serverfx"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		// Handlers must be registered before the registry is built.
		fx.Invoke(registerHandlers),
		serverfx.Module(
			serverfx.WithService("rhttpd"),
		),
	).Run()
}
