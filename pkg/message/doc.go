// Package message parses and serializes the textual HTTP-like frames that
// travel as pub/sub payloads.
//
// A frame is a start line, zero or more "Name: value" header lines, an empty
// line, and a body, with lines separated by CRLF. Frames whose start line
// begins with "HTTP" are responses; everything else is a request.
//
// The body is everything after the first empty line, taken verbatim, so
// multi-line bodies keep their line breaks. The reason phrase of a status
// line is the whole remainder of the line after the status code.
package message
