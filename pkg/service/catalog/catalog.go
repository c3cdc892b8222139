// Package catalog provides the reference role catalog used to pre-populate
// role assignments with a starting rate and currency.
package catalog

import (
	"sort"
	"strings"
)

// Entry is one catalog role record. BaseRate seeds a new assignment's
// hourly rate; the catalog does not validate it further.
type Entry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	BaseRate float64 `json:"baseRate"`
	Currency string  `json:"currency"`
	Category string  `json:"category"`
}

// Catalog is an immutable lookup of reference roles keyed by ID.
type Catalog struct {
	entries map[string]Entry
}

// New creates a catalog with the built-in reference roles.
func New() *Catalog {
	c := &Catalog{entries: make(map[string]Entry)}
	for _, e := range []Entry{
		{ID: "software-engineer", Name: "Software Engineer", BaseRate: 75, Currency: "USD", Category: "engineering"},
		{ID: "senior-software-engineer", Name: "Senior Software Engineer", BaseRate: 105, Currency: "USD", Category: "engineering"},
		{ID: "staff-engineer", Name: "Staff Engineer", BaseRate: 135, Currency: "USD", Category: "engineering"},
		{ID: "qa-engineer", Name: "QA Engineer", BaseRate: 55, Currency: "USD", Category: "quality"},
		{ID: "devops-engineer", Name: "DevOps Engineer", BaseRate: 95, Currency: "USD", Category: "engineering"},
		{ID: "data-engineer", Name: "Data Engineer", BaseRate: 100, Currency: "USD", Category: "data"},
		{ID: "ux-designer", Name: "UX Designer", BaseRate: 70, Currency: "USD", Category: "design"},
		{ID: "project-manager", Name: "Project Manager", BaseRate: 85, Currency: "USD", Category: "management"},
		{ID: "business-analyst", Name: "Business Analyst", BaseRate: 65, Currency: "USD", Category: "management"},
	} {
		c.entries[e.ID] = e
	}
	return c
}

// Get returns the catalog entry for the given ID.
func (c *Catalog) Get(id string) (Entry, bool) {
	entry, ok := c.entries[strings.ToLower(strings.TrimSpace(id))]
	return entry, ok
}

// List returns every entry sorted by name.
func (c *Catalog) List() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
