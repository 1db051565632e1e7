package message

import "strings"

// Query holds query-string parameters without any percent-decoding.
// A parameter written without '=' is present with a nil value, which is
// distinct from an empty value ("k=").
type Query map[string]*string

// Get returns the value of key and whether it carried one.
func (q Query) Get(key string) (string, bool) {
	v := q[key]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Has reports whether key appeared at all.
func (q Query) Has(key string) bool {
	_, ok := q[key]
	return ok
}

// parseQuery splits raw on '&' and each pair on the first '='.
// Empty segments are skipped; a repeated key keeps its last value.
func parseQuery(raw string) Query {
	q := Query{}
	for _, seg := range strings.Split(raw, "&") {
		if seg == "" {
			continue
		}
		k, v, ok := strings.Cut(seg, "=")
		if !ok {
			q[k] = nil
			continue
		}
		q[k] = &v
	}
	return q
}

// splitTarget separates a request target into path and raw query.
func splitTarget(target string) (path, rawQuery string) {
	path, rawQuery, _ = strings.Cut(target, "?")
	return path, rawQuery
}
