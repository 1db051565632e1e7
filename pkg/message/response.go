package message

import (
	"fmt"
	"strconv"

	"github.com/joeydtaylor/steeze-rhttp/pkg/status"
)

// Response is a response frame. StatusMessage carries whatever reason phrase
// was on the wire for parsed frames; SetStatus keeps it in step with the code.
type Response struct {
	StatusCode    int
	StatusMessage string
	Header        Header
	Body          string
	// SocketID mirrors the X-Socket-ID header.
	SocketID string
}

// NewResponse returns a 200 OK response with Content-Length: 0.
func NewResponse() *Response {
	r := &Response{}
	r.SetStatus(200)
	r.Header.Set(HeaderContentLength, "0")
	return r
}

// SetStatus sets the code and re-derives the reason phrase.
func (r *Response) SetStatus(code int) {
	r.StatusCode = code
	r.StatusMessage = status.Text(code)
}

// SetBody stores body and fixes Content-Length to its byte length.
func (r *Response) SetBody(body string) {
	r.Body = body
	r.Header.Set(HeaderContentLength, strconv.Itoa(len(body)))
}

// SetSocketID sets the correlation id and its header together.
func (r *Response) SetSocketID(id string) {
	r.SocketID = id
	r.Header.Set(HeaderSocketID, id)
}

// Clone returns an independent copy.
func (r *Response) Clone() *Response {
	c := *r
	c.Header = r.Header.Clone()
	return &c
}

// StartLine renders "HTTP/1.1 <code> <reason>".
func (r *Response) StartLine() string {
	return fmt.Sprintf("HTTP/1.1 %d %s", r.StatusCode, r.StatusMessage)
}

func (r *Response) header() *Header { return &r.Header }
func (r *Response) body() string    { return r.Body }
