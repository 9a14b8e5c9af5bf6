// Package query validates and builds analytical queries against the
// Catalog, executes them through the Warehouse Gateway, and shapes the
// results with quality-metadata attribution. Every operation named in
// spec.md §4.4 is a method on *Engine.
package query

import (
	"edgarqa/internal/catalog"
	"edgarqa/internal/warehouse"
)

// Range is a range filter: at least one of the fields must be set.
// Membership ("in") and substring ("contains") are also expressed here
// so a single Filter shape covers every documented where-clause form.
type Range struct {
	Gte      any
	Lte      any
	Gt       any
	Lt       any
	In       []any
	Contains string
}

// IsRange reports whether r carries any range/membership constraint
// (vs. being the zero value, which means "scalar equality instead").
func (r Range) IsRange() bool {
	return r.Gte != nil || r.Lte != nil || r.Gt != nil || r.Lt != nil || r.In != nil || r.Contains != ""
}

// Filter is one where-clause entry: either a scalar equality, a flat
// list membership, or a Range.
type Filter struct {
	Column string
	Scalar any       // set when this is a plain equality filter
	List   []any     // set when this is a membership filter
	Range  Range     // set when this is a range filter
	IsList bool
	IsRange bool
}

// Aggregation maps an output column to a pushed-down SQL aggregate.
type Aggregation string

const (
	AggSum   Aggregation = "SUM"
	AggAvg   Aggregation = "AVG"
	AggMin   Aggregation = "MIN"
	AggMax   Aggregation = "MAX"
	AggCount Aggregation = "COUNT"
)

// Meta accompanies every data-returning operation's rows.
type Meta struct {
	FileID          string           `json:"file_id"`
	RowCount        int              `json:"row_count"`
	Warnings        []string         `json:"warnings,omitempty"`
	QualityMetadata *QualityMetadata `json:"quality_metadata,omitempty"`
	FallbackTrace   []TraceStep      `json:"fallback_trace,omitempty"`
}

// TraceStep mirrors entity.CascadeStep at the Query Engine boundary,
// avoiding an import of the entity package's richer type into JSON
// responses.
type TraceStep struct {
	Level  string `json:"level"`
	Status string `json:"status"`
}

// QualityMetadata is attached to every data-returning operation,
// drawn verbatim from the Sector Quality Block — no field here is
// ever computed from the returned rows.
type QualityMetadata struct {
	Sector            catalog.Sector `json:"sector"`
	QualityScore      float64        `json:"quality_score"`
	ConfidenceLevel   string         `json:"confidence_level"`
	UncertaintyPct    float64        `json:"uncertainty_pct"`
	ExternalSources   []string       `json:"external_sources"`
	DataVersion       string         `json:"data_version"`
	RecommendedUses   []string       `json:"recommended_uses"`
}

const dataVersion = "EDGAR v2024"

func qualityMetadataFor(d catalog.Dataset) *QualityMetadata {
	return &QualityMetadata{
		Sector:          d.Sector,
		QualityScore:    d.Quality.QualityScore,
		ConfidenceLevel: d.Quality.ConfidenceTier,
		UncertaintyPct:  d.Quality.UncertaintyPct,
		ExternalSources: d.Quality.ExternalSources,
		DataVersion:     dataVersion,
		RecommendedUses: recommendedUses(d.Quality.ConfidenceTier),
	}
}

func recommendedUses(tier string) []string {
	switch tier {
	case "HIGH":
		return []string{"policy analysis", "public reporting", "year-over-year comparison"}
	case "MEDIUM":
		return []string{"trend analysis", "internal planning"}
	default:
		return []string{"indicative screening only"}
	}
}

// Row is the JSON-friendly row shape returned to tool callers.
type Row = map[string]any

func toJSONRows(rows []warehouse.Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Map())
	}
	return out
}
