package logic

import (
	"errors"
	"testing"
)

func TestDefaultCatalogOrder(t *testing.T) {
	c := DefaultCatalog()
	want := []Profile{
		{"Tomat", 30, 65},
		{"Pelargon", 40, 75},
		{"Gurka", 30, 65},
		{"Palletblad", 40, 70},
	}
	if c.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", c.Len(), len(want))
	}
	for i, w := range want {
		if got := c.Profile(i); got != w {
			t.Errorf("Profile(%d) = %+v, want %+v", i, got, w)
		}
	}
}

func TestNewCatalogEmpty(t *testing.T) {
	_, err := NewCatalog(nil)
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestNewCatalogRejectsBadNames(t *testing.T) {
	if _, err := NewCatalog([]Profile{{Name: ""}}); err == nil {
		t.Error("expected error for unnamed plant")
	}
	if _, err := NewCatalog([]Profile{{Name: "A"}, {Name: "A"}}); err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	in := []Profile{{Name: "A", MinMoisturePct: 1, MaxMoisturePct: 2}}
	c, err := NewCatalog(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in[0].Name = "changed"
	if c.Profile(0).Name != "A" {
		t.Error("catalog shares the input slice")
	}

	out := c.Profiles()
	out[0].Name = "changed"
	if c.Profile(0).Name != "A" {
		t.Error("Profiles() exposes internal slice")
	}
}

func TestCatalogPreservesThresholdOrder(t *testing.T) {
	c, err := NewCatalog([]Profile{{Name: "Odd", MinMoisturePct: 80, MaxMoisturePct: 20}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := c.Profile(0)
	if p.MinMoisturePct != 80 || p.MaxMoisturePct != 20 {
		t.Errorf("thresholds changed: %+v", p)
	}
}

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()
	if i, ok := c.Lookup("Gurka"); !ok || i != 2 {
		t.Errorf("Lookup(Gurka) = (%d, %v), want (2, true)", i, ok)
	}
	if _, ok := c.Lookup("Kaktus"); ok {
		t.Error("Lookup(Kaktus) should fail")
	}
}
