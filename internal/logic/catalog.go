package logic

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog is returned when a catalog would contain no plants.
var ErrEmptyCatalog = errors.New("plant catalog is empty")

// Catalog is the ordered list of selectable plants.
// The order is the order the knob walks through; it never changes after
// construction.
type Catalog struct {
	profiles []Profile
}

// DefaultProfiles is the built-in plant table.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "Tomat", MinMoisturePct: 30, MaxMoisturePct: 65},
		{Name: "Pelargon", MinMoisturePct: 40, MaxMoisturePct: 75},
		{Name: "Gurka", MinMoisturePct: 30, MaxMoisturePct: 65},
		{Name: "Palletblad", MinMoisturePct: 40, MaxMoisturePct: 70},
	}
}

// NewCatalog copies profiles into a new Catalog.
func NewCatalog(profiles []Profile) (*Catalog, error) {
	if len(profiles) == 0 {
		return nil, ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(profiles))
	for i, p := range profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("plant %d has no name", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate plant name %q", p.Name)
		}
		seen[p.Name] = true
	}
	c := &Catalog{profiles: make([]Profile, len(profiles))}
	copy(c.profiles, profiles)
	return c, nil
}

// DefaultCatalog returns a Catalog holding DefaultProfiles.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog(DefaultProfiles())
	return c
}

// Len returns the number of plants.
func (c *Catalog) Len() int {
	return len(c.profiles)
}

// Profile returns the plant at index i. It panics if i is out of range;
// indices handed out by Selection are always in range.
func (c *Catalog) Profile(i int) Profile {
	return c.profiles[i]
}

// Profiles returns a copy of all plants in selection order.
func (c *Catalog) Profiles() []Profile {
	out := make([]Profile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// Lookup returns the index of the plant with the given name.
func (c *Catalog) Lookup(name string) (int, bool) {
	for i, p := range c.profiles {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}
