package message

import "testing"

func TestHeaderOrderAndOverwrite(t *testing.T) {
	var h Header
	h.Set("B", "1")
	h.Set("A", "2")
	h.Set("B", "3")

	if h.Len() != 2 {
		t.Fatalf("Len = %d", h.Len())
	}
	names := h.Names()
	if names[0] != "B" || names[1] != "A" {
		t.Errorf("names = %v, overwrite must keep position", names)
	}
	if h.Get("B") != "3" {
		t.Errorf("B = %q", h.Get("B"))
	}
	if _, ok := h.Lookup("b"); ok {
		t.Error("lookups are case-sensitive")
	}
}

func TestHeaderDelAndClone(t *testing.T) {
	var h Header
	h.Set("X", "1")
	h.Set("Y", "2")
	c := h.Clone()
	h.Del("X")
	h.Del("missing")

	if h.Len() != 1 || h.Get("Y") != "2" {
		t.Errorf("after Del: %v", h.Map())
	}
	if c.Len() != 2 || c.Get("X") != "1" {
		t.Errorf("clone changed: %v", c.Map())
	}
	c.Set("Z", "3")
	if _, ok := h.Lookup("Z"); ok {
		t.Error("clone aliases original")
	}
}

func TestHeaderEqual(t *testing.T) {
	var a, b Header
	a.Set("K", "v")
	a.Set("L", "w")
	b.Set("L", "w")
	b.Set("K", "v")
	if a.Equal(&b) {
		t.Error("different order should not be equal")
	}
	c := a.Clone()
	if !a.Equal(&c) {
		t.Error("clone should be equal")
	}
}
