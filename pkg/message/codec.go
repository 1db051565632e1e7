package message

import (
	"strconv"
	"strings"
)

// Message is a *Request or a *Response.
type Message interface {
	StartLine() string
	header() *Header
	body() string
}

// Parse classifies raw and builds a *Request or *Response from it.
// Failures are *MalformedError values.
func Parse(raw string) (Message, error) {
	lines, err := tokenize(raw)
	if err != nil {
		return nil, err
	}
	start := lines[0].text

	var (
		h    Header
		body string
	)
	for _, ln := range lines[1:] {
		switch ln.kind {
		case lineHeader:
			h.Set(ln.name, ln.value)
		case lineBody:
			body = ln.text
		}
	}

	if strings.HasPrefix(start, "HTTP") {
		res, err := parseStatusLine(start)
		if err != nil {
			return nil, err
		}
		res.Header, res.Body = h, body
		res.SocketID = h.Get(HeaderSocketID)
		return res, nil
	}

	req, err := parseRequestLine(start)
	if err != nil {
		return nil, err
	}
	req.Header, req.Body = h, body
	req.SocketID = h.Get(HeaderSocketID)
	return req, nil
}

// ParseRequest parses raw and fails with ErrNotRequest for response frames.
func ParseRequest(raw string) (*Request, error) {
	m, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	req, ok := m.(*Request)
	if !ok {
		return nil, ErrNotRequest
	}
	return req, nil
}

// ParseResponse parses raw and fails for request frames.
func ParseResponse(raw string) (*Response, error) {
	m, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	res, ok := m.(*Response)
	if !ok {
		return nil, malformed(1, m.StartLine(), "expected a status line")
	}
	return res, nil
}

// "<METHOD> <target> [HTTP/<version>]"
func parseRequestLine(text string) (*Request, error) {
	f := strings.Fields(text)
	if len(f) < 2 || len(f) > 3 {
		return nil, malformed(1, text, "request line needs method, path and version")
	}
	m, ok := ParseMethod(f[0])
	if !ok {
		return nil, malformed(1, text, "unknown method")
	}
	if len(f) == 3 && !strings.HasPrefix(f[2], "HTTP/") {
		return nil, malformed(1, text, "bad protocol version")
	}
	return NewRequest(m, f[1]), nil
}

// "HTTP/<version> <code> <reason...>"
func parseStatusLine(text string) (*Response, error) {
	_, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimLeft(rest, " ")
	codeStr, reason, _ := strings.Cut(rest, " ")
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return nil, malformed(1, text, "bad status code")
	}
	return &Response{
		StatusCode:    code,
		StatusMessage: strings.TrimSpace(reason),
	}, nil
}

// Serialize renders m as a frame. Content-Length is written as stored.
func Serialize(m Message) string {
	var b strings.Builder
	b.WriteString(m.StartLine())
	b.WriteString(crlf)
	m.header().Each(func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(crlf)
	})
	b.WriteString(crlf)
	b.WriteString(m.body())
	return b.String()
}
