// Package catalog holds the per-field override values used instead of
// synthetic data. Values are untyped tokens: string, int64, bool, Number,
// time.Time or nil.
package catalog

import "sort"

// Number is a non-integer numeric token kept as its literal text so that
// decimal columns see the exact value that was written in the catalog.
type Number string

func (n Number) String() string { return string(n) }

// Catalog maps a field name to the ordered values cycled for that field.
type Catalog map[string][]any

// Values returns the values for field. An empty list counts as absent.
func (c Catalog) Values(field string) ([]any, bool) {
	v, ok := c[field]
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v, true
}

// RowCount returns the length of the longest value list.
func (c Catalog) RowCount() int {
	n := 0
	for _, v := range c {
		if len(v) > n {
			n = len(v)
		}
	}
	return n
}

// Merge returns a new catalog with the entries of other laid over c.
func (c Catalog) Merge(other Catalog) Catalog {
	out := make(Catalog, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Fields returns the field names in sorted order.
func (c Catalog) Fields() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
