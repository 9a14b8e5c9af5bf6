// Package entity normalises user-supplied place names to canonical
// country/admin1/city entities, detects geographic level, and cascades
// city -> admin1 -> country when data is missing at the detected
// level.
package entity

import "edgarqa/internal/catalog"

// Entity is a resolved place name at a known geographic level.
type Entity struct {
	RawName       string
	CanonicalName string
	Level         catalog.Level
	ISO3          string
}

// Resolution is the result of Normalise: either a confident match
// (Level != "") or a miss carrying ranked suggestions.
type Resolution struct {
	Canonical   string
	Level       catalog.Level
	Similarity  float64
	Suggestions []string
}

// Resolved reports whether a confident match was found.
func (r Resolution) Resolved() bool { return r.Level != "" }

// CascadeStep records one attempted level during a cascade and its
// outcome, so callers can explain which fallback produced an answer.
type CascadeStep struct {
	Level  catalog.Level
	Status string // "ok", "no_data", "unresolved"
}

// CascadeResult is the outcome of Cascade: the file_id and entity that
// ultimately produced data (if any), plus the full attempt trace.
type CascadeResult struct {
	FileID   string
	Entity   Entity
	Trace    []CascadeStep
	Resolved bool
}
