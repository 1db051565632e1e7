package metrics

import (
	"strings"
	"sync"

	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

var (
	skipMu    sync.RWMutex
	skipPaths = map[string]struct{}{}

	normMu         sync.RWMutex
	pathNormalizer = func(req *message.Request) string { return req.Path }
)

// AddMetricsSkipPaths excludes request paths from the per-endpoint counters.
func AddMetricsSkipPaths(paths ...string) {
	skipMu.Lock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			skipPaths[p] = struct{}{}
		}
	}
	skipMu.Unlock()
}

// SetPathNormalizer allows callers to normalize the URI label (e.g., collapse IDs).
// By default it returns req.Path unchanged.
func SetPathNormalizer(fn func(*message.Request) string) {
	if fn == nil {
		return
	}
	normMu.Lock()
	pathNormalizer = fn
	normMu.Unlock()
}

func isSkipPath(req *message.Request) bool {
	skipMu.RLock()
	_, ok := skipPaths[req.Path]
	skipMu.RUnlock()
	return ok
}

func normalizePath(req *message.Request) string {
	normMu.RLock()
	fn := pathNormalizer
	normMu.RUnlock()
	return fn(req)
}
