package message

import "strings"

const crlf = "\r\n"

type lineKind uint8

const (
	lineStart lineKind = iota
	lineHeader
	lineBody
)

// line is one typed record of a frame.
type line struct {
	kind  lineKind
	num   int
	text  string
	name  string // lineHeader only
	value string // lineHeader only
}

// tokenize splits raw into a start line, header lines and at most one body record.
func tokenize(raw string) ([]line, error) {
	parts := strings.Split(raw, crlf)
	if strings.TrimSpace(parts[0]) == "" {
		return nil, malformed(1, parts[0], "empty start line")
	}

	out := make([]line, 0, len(parts))
	out = append(out, line{kind: lineStart, num: 1, text: parts[0]})

	for i := 1; i < len(parts); i++ {
		text := parts[i]
		if text == "" {
			out = append(out, line{
				kind: lineBody,
				num:  i + 2,
				text: strings.Join(parts[i+1:], crlf),
			})
			return out, nil
		}
		name, value, ok := strings.Cut(text, ":")
		if !ok {
			return nil, malformed(i+1, text, "header line without ':'")
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, malformed(i+1, text, "empty header name")
		}
		out = append(out, line{
			kind:  lineHeader,
			num:   i + 1,
			text:  text,
			name:  name,
			value: strings.TrimSpace(value),
		})
	}
	return out, nil
}
