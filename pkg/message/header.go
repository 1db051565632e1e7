package message

// HeaderSocketID is the correlation header used to route a reply back to
// the caller that issued the request.
const HeaderSocketID = "X-Socket-ID"

const (
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
)

// Header is an insertion-ordered set of header fields. Names are compared
// exactly as received; setting an existing name keeps its position.
// The zero value is ready to use.
type Header struct {
	names  []string
	values map[string]string
}

// Get returns the value for name, or "" if absent.
func (h *Header) Get(name string) string {
	return h.values[name]
}

// Lookup returns the value for name and whether it is present.
func (h *Header) Lookup(name string) (string, bool) {
	v, ok := h.values[name]
	return v, ok
}

// Set stores value under name, overwriting any previous value.
func (h *Header) Set(name, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
	}
	if _, ok := h.values[name]; !ok {
		h.names = append(h.names, name)
	}
	h.values[name] = value
}

// Del removes name.
func (h *Header) Del(name string) {
	if _, ok := h.values[name]; !ok {
		return
	}
	delete(h.values, name)
	for i, n := range h.names {
		if n == name {
			h.names = append(h.names[:i:i], h.names[i+1:]...)
			break
		}
	}
}

// Len returns the number of fields.
func (h *Header) Len() int { return len(h.names) }

// Names returns the field names in insertion order.
func (h *Header) Names() []string {
	return append([]string(nil), h.names...)
}

// Each calls fn for every field in insertion order.
func (h *Header) Each(fn func(name, value string)) {
	for _, n := range h.names {
		fn(n, h.values[n])
	}
}

// Clone returns an independent copy.
func (h *Header) Clone() Header {
	c := Header{names: append([]string(nil), h.names...)}
	if h.values != nil {
		c.values = make(map[string]string, len(h.values))
		for k, v := range h.values {
			c.values[k] = v
		}
	}
	return c
}

// Equal reports whether both headers hold the same fields in the same order.
func (h *Header) Equal(o *Header) bool {
	if len(h.names) != len(o.names) {
		return false
	}
	for i, n := range h.names {
		if o.names[i] != n || o.values[n] != h.values[n] {
			return false
		}
	}
	return true
}

// Map returns the fields as a plain map.
func (h *Header) Map() map[string]string {
	out := make(map[string]string, len(h.names))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}
