package query

import "edgarqa/internal/catalog"

// QueryArgs is the generic filtered projection: select/where/group_by/
// order_by/aggregations/limit over one dataset.
type QueryArgs struct {
	FileID       string                  `json:"file_id"`
	Select       []string                `json:"select,omitempty"`
	Where        map[string]any          `json:"where,omitempty"`
	GroupBy      []string                `json:"group_by,omitempty"`
	OrderBy      []string                `json:"order_by,omitempty"` // "column" or "column desc"
	Aggregations map[string]Aggregation  `json:"aggregations,omitempty"`
	Limit        *int                    `json:"limit,omitempty"`
}

// Result is the uniform data-returning envelope: rows plus Meta.
type Result struct {
	Rows []Row `json:"rows"`
	Meta Meta  `json:"meta"`
}

// TopNArgs ranks rows by one measure column, descending unless Ascending.
type TopNArgs struct {
	FileID    string         `json:"file_id"`
	Year      int            `json:"year"`
	Measure   string         `json:"measure"`
	N         int            `json:"n"`
	Ascending bool           `json:"ascending,omitempty"`
	Where     map[string]any `json:"where,omitempty"`
}

// defaultMeasureColumn is the measure column every compare_emissions/
// analyze_emissions_trend/metrics.yoy call falls back to when it isn't
// given one explicitly, per the manifest column-naming convention
// (SPEC_FULL.md §3.1).
const defaultMeasureColumn = "emissions_tonnes"

// defaultYoyTopN is metrics.yoy's default ranked-row count.
const defaultYoyTopN = 10

// CompareArgs compares entities against one another for one sector/year,
// resolving each entity through the Entity Resolver first. Level is an
// optional hint for resolution and dataset selection; left empty, each
// entity resolves at whichever level its name matches.
type CompareArgs struct {
	Entities []string       `json:"entities"`
	Sector   catalog.Sector `json:"sector"`
	Year     int            `json:"year"`
	Level    catalog.Level  `json:"level,omitempty"`
}

// CompareEntityRow is one requested entity's outcome: a data row when it
// resolved and had data, or an error ("unresolved"/"no_data") that never
// fails the whole call.
type CompareEntityRow struct {
	Entity     string   `json:"entity"`
	Resolved   string   `json:"resolved_entity,omitempty"`
	Row        Row      `json:"row,omitempty"`
	Error      string   `json:"error,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// CompareRankEntry ranks one resolved, data-bearing entity by its
// emissions value, descending.
type CompareRankEntry struct {
	Entity string  `json:"entity"`
	Value  float64 `json:"value"`
	Rank   int     `json:"rank"`
}

// CompareDelta is one entity's absolute and percentage difference from
// the highest-ranked emitter.
type CompareDelta struct {
	Entity        string  `json:"entity"`
	AbsoluteDelta float64 `json:"absolute_delta"`
	PercentDelta  float64 `json:"percent_delta"`
}

// CompareResult carries every requested entity's row, the ranking among
// those that resolved to data, and deltas against the top emitter.
type CompareResult struct {
	PerEntityRows []CompareEntityRow `json:"per_entity_rows"`
	Ranking       []CompareRankEntry `json:"ranking"`
	Deltas        []CompareDelta     `json:"deltas"`
	Meta          Meta               `json:"meta"`
}

// TrendArgs reports a measure across a year range for one entity,
// resolved through the Entity Resolver, plus a derived direction
// classification. Grain defaults to year.
type TrendArgs struct {
	Entity    string         `json:"entity"`
	Sector    catalog.Sector `json:"sector"`
	StartYear int            `json:"start_year"`
	EndYear   int            `json:"end_year"`
	Grain     catalog.Grain  `json:"grain,omitempty"`
}

// TrendResult adds the simple and compound-annual growth figures and
// the derived direction to the base Result.
type TrendResult struct {
	Result
	TotalChangePercent float64 `json:"total_change_pct"`
	CAGRPercent        float64 `json:"cagr_percent"`
	Direction          string  `json:"direction"` // "increasing", "decreasing", "stable"
}

// YoyArgs ranks every key_column value in file_id by how its
// value_column moved between base_year and compare_year. value_column
// defaults to emissions_tonnes, top_n to 10, direction to "drop" (the
// largest decreases first); direction "rise" ranks the largest
// increases first. file_id must be a year-grain dataset.
type YoyArgs struct {
	FileID      string `json:"file_id"`
	KeyColumn   string `json:"key_column"`
	ValueColumn string `json:"value_column,omitempty"`
	BaseYear    int    `json:"base_year"`
	CompareYear int    `json:"compare_year"`
	TopN        int    `json:"top_n,omitempty"`
	Direction   string `json:"direction,omitempty"`
}

// YoyRow is one key_column value's ranked change between the two years.
// PctChange is nil when base_value is zero: division is undefined, not
// an error.
type YoyRow struct {
	Key          string   `json:"key"`
	BaseValue    float64  `json:"base_value"`
	CompareValue float64  `json:"compare_value"`
	AbsoluteChange float64  `json:"absolute_change"`
	PctChange    *float64 `json:"pct_change"`
}

// YoyResult carries the ranked rows.
type YoyResult struct {
	Rows []YoyRow `json:"rows"`
	Meta Meta     `json:"meta"`
}

// MonthlyTrendsArgs reports a monthly-grain measure across one year for
// one entity.
type MonthlyTrendsArgs struct {
	FileID  string `json:"file_id"`
	Entity  string `json:"entity"`
	Measure string `json:"measure"`
	Year    int    `json:"year"`
}

// SeasonalArgs derives a seasonality score from a monthly-grain series.
type SeasonalArgs struct {
	FileID  string `json:"file_id"`
	Entity  string `json:"entity"`
	Measure string `json:"measure"`
	Year    int    `json:"year"`
}

// SeasonalResult carries the derived coefficient-of-variation score.
type SeasonalResult struct {
	Result
	SeasonalityScore float64 `json:"seasonality_score"`
	PeakMonth        int     `json:"peak_month"`
	TroughMonth      int     `json:"trough_month"`
}

// AggregateAcrossSectorsArgs sums/averages a measure for one entity/year
// across every sector dataset at the given level/grain.
type AggregateAcrossSectorsArgs struct {
	Level   catalog.Level   `json:"level"`
	Grain   catalog.Grain   `json:"grain"`
	Entity  string          `json:"entity"`
	Year    int             `json:"year"`
	Measure string          `json:"measure"`
	Agg     Aggregation     `json:"agg,omitempty"`
}

// AggregateAcrossSectorsResult reports the per-sector breakdown plus
// the combined total.
type AggregateAcrossSectorsResult struct {
	BySector map[catalog.Sector]float64 `json:"by_sector"`
	Total    float64                    `json:"total"`
	Meta     Meta                       `json:"meta"`
}

// SmartQueryArgs is a natural-language-adjacent request that the Engine
// resolves through the Entity Resolver's cascade before delegating to
// Query.
type SmartQueryArgs struct {
	Sector  catalog.Sector `json:"sector"`
	Grain   catalog.Grain  `json:"grain"`
	Entity  string         `json:"entity"`
	Year    int            `json:"year"`
	Measure string         `json:"measure"`
}

// SmartQueryResult carries the cascade trace alongside the data.
type SmartQueryResult struct {
	Result
	ResolvedEntity string `json:"resolved_entity"`
	ResolvedLevel  string `json:"resolved_level"`
}

// QualityFilteredArgs restricts a query to rows/datasets meeting a
// minimum quality score.
type QualityFilteredArgs struct {
	FileID     string         `json:"file_id"`
	Where      map[string]any `json:"where,omitempty"`
	MinQuality float64        `json:"min_quality"`
	Limit      *int           `json:"limit,omitempty"`
}

// ValidatedRecordsArgs filters to rows whose data_source does not
// include "synthetic" or "estimated" among its pipe-delimited tags.
type ValidatedRecordsArgs struct {
	FileID string         `json:"file_id"`
	Where  map[string]any `json:"where,omitempty"`
	Limit  *int           `json:"limit,omitempty"`
}

// UncertaintyAnalysisArgs reports the 95% confidence bounds for a
// measure, from per-row uncertainty columns when the dataset has them,
// else from the Sector Quality Block's uncertainty_pct.
type UncertaintyAnalysisArgs struct {
	FileID  string `json:"file_id"`
	Entity  string `json:"entity"`
	Measure string `json:"measure"`
	Year    int    `json:"year"`
}

// UncertaintyAnalysisResult reports the point estimate and its bounds.
type UncertaintyAnalysisResult struct {
	PointEstimate float64 `json:"point_estimate"`
	LowerBound    float64 `json:"lower_bound_95"`
	UpperBound    float64 `json:"upper_bound_95"`
	Source        string  `json:"source"` // "per_row" or "sector_quality_block"
	Meta          Meta    `json:"meta"`
}
