package logger

import (
	"strings"
	"sync"

	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

var (
	bodyLogMu    sync.RWMutex
	bodyLogPaths = map[string]struct{}{
		"/echo":     {},
		"/feedback": {},
	}
)

// AddBodyLogPaths lets callers extend the allowlist at runtime (optional).
func AddBodyLogPaths(paths ...string) {
	bodyLogMu.Lock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			bodyLogPaths[p] = struct{}{}
		}
	}
	bodyLogMu.Unlock()
}

// Only log small JSON request bodies on allowlisted routes.
func shouldLogBody(req *message.Request) bool {
	switch req.Method {
	case message.MethodPost, message.MethodPut, message.MethodPatch:
	default:
		return false
	}
	if len(req.Body) == 0 || len(req.Body) > 1<<16 { // 64 KiB cap
		return false
	}
	if !strings.HasPrefix(req.Header.Get(message.HeaderContentType), "application/json") {
		return false
	}
	bodyLogMu.RLock()
	_, ok := bodyLogPaths[req.Path]
	bodyLogMu.RUnlock()
	return ok
}
