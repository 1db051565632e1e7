// Package bundlefx groups the middleware modules for apps that wire their own
// transport instead of using serverfx.
package bundlefx

import (
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-rhttp/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module provided to fx
var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)
