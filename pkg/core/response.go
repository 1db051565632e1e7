package core

import (
	"maps"
	"slices"

	"github.com/joeydtaylor/steeze-rhttp/pkg/codec"
	"github.com/joeydtaylor/steeze-rhttp/pkg/message"
)

// ResponseBuilder accumulates the response to a single request.
// Mutators return the builder so calls chain:
//
//	return res.Status(201).ContentType("text/plain").Send("created")
type ResponseBuilder struct {
	req *message.Request
	res *message.Response
}

// NewResponseBuilder starts a 200 OK response with Content-Length: 0 for req.
func NewResponseBuilder(req *message.Request) *ResponseBuilder {
	return &ResponseBuilder{req: req, res: message.NewResponse()}
}

// Request returns the request being answered.
func (b *ResponseBuilder) Request() *message.Request { return b.req }

// Status sets the status code; the reason phrase follows it. Any integer is accepted.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.res.SetStatus(code)
	return b
}

// ContentType sets the Content-Type header.
func (b *ResponseBuilder) ContentType(t string) *ResponseBuilder {
	b.res.Header.Set(message.HeaderContentType, t)
	return b
}

// Header merges h into the response headers. Keys are applied in sorted
// order so new fields serialize deterministically.
func (b *ResponseBuilder) Header(h map[string]string) *ResponseBuilder {
	for _, k := range slices.Sorted(maps.Keys(h)) {
		b.res.Header.Set(k, h[k])
	}
	return b
}

// Set sets a single header.
func (b *ResponseBuilder) Set(name, value string) *ResponseBuilder {
	b.res.Header.Set(name, value)
	return b
}

// Send stores body, fixes Content-Length, copies the request's X-Socket-ID
// and returns the serialized frame. Calling it again replaces the body.
func (b *ResponseBuilder) Send(body string) string {
	b.res.SetBody(body)
	if b.req != nil && b.req.SocketID != "" {
		b.res.SetSocketID(b.req.SocketID)
	}
	return message.Serialize(b.res)
}

// JSON encodes v with the strict JSON codec and sends it. Encoding failures
// answer 500 with the error text.
func (b *ResponseBuilder) JSON(v any) string {
	body, err := codec.EncodeBody(codec.JSONStrict, v)
	if err != nil {
		return b.Status(500).ContentType("text/plain; charset=utf-8").Send(err.Error())
	}
	return b.ContentType(codec.JSONStrict.ContentType()).Send(body)
}

// Response returns a copy of the response as built so far.
func (b *ResponseBuilder) Response() *message.Response { return b.res.Clone() }
