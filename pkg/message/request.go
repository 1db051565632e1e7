package message

import (
	"context"
	"fmt"
	"maps"
	"strconv"
)

// Request is a parsed request frame. Treat it as read-only once parsed.
type Request struct {
	Method Method
	// Path is the target up to the first '?'; routing matches on it.
	Path string
	// RawQuery is the target after the first '?', kept so the frame re-serializes.
	RawQuery string
	Query    Query
	Header   Header
	Body     string
	// SocketID mirrors the X-Socket-ID header.
	SocketID string

	ctx context.Context
}

// Context returns the request's context, context.Background if none was set.
// It carries values resolved while the frame is handled, such as the caller.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("message: nil context")
	}
	c := *r
	c.ctx = ctx
	return &c
}

// NewRequest builds a request for method and target ("/path?query").
func NewRequest(method Method, target string) *Request {
	r := &Request{Method: method, Query: Query{}}
	r.setTarget(target)
	return r
}

func (r *Request) setTarget(target string) {
	r.Path, r.RawQuery = splitTarget(target)
	if r.RawQuery != "" {
		r.Query = parseQuery(r.RawQuery)
	} else if r.Query == nil {
		r.Query = Query{}
	}
}

// Target rebuilds the request target from Path and RawQuery.
func (r *Request) Target() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

// SetSocketID sets the correlation id and its header together.
func (r *Request) SetSocketID(id string) {
	r.SocketID = id
	r.Header.Set(HeaderSocketID, id)
}

// SetBody stores body and sets Content-Length to its byte length.
func (r *Request) SetBody(body string) {
	r.Body = body
	r.Header.Set(HeaderContentLength, strconv.Itoa(len(body)))
}

// Clone returns a deep copy.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	c.Query = maps.Clone(r.Query)
	return &c
}

// StartLine renders "<METHOD> <target> HTTP/1.1".
func (r *Request) StartLine() string {
	return fmt.Sprintf("%s %s HTTP/1.1", r.Method, r.Target())
}

func (r *Request) header() *Header { return &r.Header }
func (r *Request) body() string    { return r.Body }
