// Package codec encodes frame bodies.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Codec converts values to and from a frame body.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// ErrTrailingContent means a body held more than one JSON value.
var ErrTrailingContent = errors.New("json trailing content")

type jsonStrict struct{}

// JSONStrict writes compact JSON without HTML escaping and rejects unknown
// fields and trailing values on decode.
var JSONStrict Codec = jsonStrict{}

func (jsonStrict) Marshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (jsonStrict) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingContent
	}
	return nil
}

func (jsonStrict) ContentType() string { return "application/json" }

// EncodeBody renders v as a frame body string.
func EncodeBody(c Codec, v any) (string, error) {
	b, err := c.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeBody parses a frame body into v.
func DecodeBody(c Codec, body string, v any) error {
	return c.Unmarshal([]byte(body), v)
}
