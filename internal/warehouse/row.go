// Package warehouse is a thin, safe wrapper over the embedded
// read-only analytical store: a bounded connection pool with health
// checks, a parameterised executor, and a bounded TTL/LRU result
// cache.
package warehouse

// Row is an ordered name -> value mapping, preserving the column order
// of the SELECT that produced it.
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the value for column name and whether it was present.
func (r Row) Get(name string) (any, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Map renders the row as a plain map, for JSON serialisation at the
// Tool Surface boundary.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}
