package query

import (
	"context"
	"fmt"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
)

// Query is the generic filtered projection over one dataset: the
// foundation every other operation is built from.
func (e *Engine) Query(ctx context.Context, args QueryArgs) (Result, error) {
	d, err := validateFileID(e.cat, args.FileID)
	if err != nil {
		return Result{}, err
	}

	selectCols := args.Select
	if len(selectCols) == 0 {
		selectCols = d.ColumnNames()
	}
	if err := assertFlatList("select", toAnySlice(selectCols)); err != nil {
		return Result{}, err
	}
	if err := validateColumnList(d, "select", selectCols); err != nil {
		return Result{}, err
	}
	if err := validateColumnList(d, "group_by", args.GroupBy); err != nil {
		return Result{}, err
	}
	if err := validateAggregations(d, args.Aggregations); err != nil {
		return Result{}, err
	}

	filters, err := parseWhere(d, args.Where)
	if err != nil {
		return Result{}, err
	}

	orderBy, err := parseOrderBy(d, args.OrderBy)
	if err != nil {
		return Result{}, err
	}

	limit, limitWarning, err := validateLimit(args.Limit)
	if err != nil {
		return Result{}, err
	}
	var warnings []string
	if limitWarning != "" {
		warnings = append(warnings, limitWarning)
	}
	warnings = append(warnings, yearCoverageWarnings(d, args.FileID, filters)...)
	if len(args.Where) == 0 {
		warnings = append(warnings, fmt.Sprintf("no where filter supplied: results are a sample of %q, capped at %d rows", args.FileID, limit))
	}

	if limit == 0 {
		return Result{
			Rows: []Row{},
			Meta: Meta{FileID: args.FileID, RowCount: 0, Warnings: warnings, QualityMetadata: qualityMetadataFor(d)},
		}, nil
	}

	s := spec{
		table:        d.PhysicalTable,
		selectCols:   selectCols,
		aggregations: args.Aggregations,
		where:        filters,
		groupBy:      args.GroupBy,
		orderBy:      orderBy,
		limit:        limit,
	}
	sqlText, params := s.build()

	rows, err := e.gw.Execute(ctx, sqlText, params)
	if err != nil {
		return Result{}, err
	}
	if err := checkRowResult(rows, args.FileID); err != nil {
		return Result{}, err
	}

	return Result{
		Rows: toJSONRows(rows),
		Meta: Meta{FileID: args.FileID, RowCount: len(rows), Warnings: warnings, QualityMetadata: qualityMetadataFor(d)},
	}, nil
}

// yearCoverageWarnings flags a scalar year filter that falls outside
// the dataset's declared temporal coverage; the query still runs, this
// only warns and names the nearest year actually covered.
func yearCoverageWarnings(d catalog.Dataset, fileID string, filters []Filter) []string {
	yearCol := yearColumn(d)
	if yearCol == "" {
		return nil
	}
	var warnings []string
	for _, f := range filters {
		if f.Column != yearCol || f.IsRange || f.IsList {
			continue
		}
		yi, ok := toInt(f.Scalar)
		if !ok || d.InYearCoverage(yi) {
			continue
		}
		warnings = append(warnings, fmt.Sprintf(
			"year %d is outside %q's declared coverage %d-%d; nearest available year is %d",
			yi, fileID, d.StartYear, d.EndYear, nearestCoveredYear(d, yi)))
	}
	return warnings
}

func nearestCoveredYear(d catalog.Dataset, year int) int {
	if year < d.StartYear {
		return d.StartYear
	}
	return d.EndYear
}

// TopN ranks rows by measure for one year, returning the top N (or
// bottom N when Ascending).
func (e *Engine) TopN(ctx context.Context, args TopNArgs) (Result, error) {
	d, err := validateFileID(e.cat, args.FileID)
	if err != nil {
		return Result{}, err
	}
	if !d.HasColumn(args.Measure) {
		return Result{}, apperr.New(apperr.UnknownColumn, "unknown measure column "+args.Measure).
			WithSuggestions(suggestColumn(d, args.Measure)...)
	}
	yearCol := yearColumn(d)
	if yearCol == "" {
		return Result{}, apperr.New(apperr.InvalidArgument, "dataset has no year column, cannot rank by year")
	}

	where := cloneWhere(args.Where)
	where[yearCol] = args.Year

	filters, err := parseWhere(d, where)
	if err != nil {
		return Result{}, err
	}
	var warnings []string
	n := args.N
	if n <= 0 {
		n = DefaultLimit
	}
	if n > HardLimitCap {
		warnings = append(warnings, fmt.Sprintf("n %d exceeds the %d row cap, clamped to %d", n, HardLimitCap, HardLimitCap))
		n = HardLimitCap
	}
	warnings = append(warnings, yearCoverageWarnings(d, args.FileID, filters)...)

	s := spec{
		table:      d.PhysicalTable,
		selectCols: d.ColumnNames(),
		where:      filters,
		orderBy:    []orderTerm{{column: args.Measure, desc: !args.Ascending}},
		limit:      n,
	}
	sqlText, params := s.build()

	rows, err := e.gw.Execute(ctx, sqlText, params)
	if err != nil {
		return Result{}, err
	}
	if err := checkRowResult(rows, args.FileID); err != nil {
		return Result{}, err
	}

	return Result{
		Rows: toJSONRows(rows),
		Meta: Meta{FileID: args.FileID, RowCount: len(rows), Warnings: warnings, QualityMetadata: qualityMetadataFor(d)},
	}, nil
}

func cloneWhere(w map[string]any) map[string]any {
	out := make(map[string]any, len(w)+1)
	for k, v := range w {
		out[k] = v
	}
	return out
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// assertFlatList rejects a select/group_by list containing a nested
// object or array element instead of a plain string.
func assertFlatList(field string, items []any) error {
	for _, it := range items {
		if err := assertFlat(field, it); err != nil {
			return err
		}
		if _, ok := it.(string); !ok {
			return apperr.New(apperr.InvalidArgument, field+": every entry must be a column name string")
		}
	}
	return nil
}

func parseOrderBy(d interface{ HasColumn(string) bool }, terms []string) ([]orderTerm, error) {
	out := make([]orderTerm, 0, len(terms))
	for _, t := range terms {
		col, desc := splitOrderTerm(t)
		if !d.HasColumn(col) {
			return nil, apperr.New(apperr.UnknownColumn, "order_by: unknown column "+col)
		}
		out = append(out, orderTerm{column: col, desc: desc})
	}
	return out, nil
}

func splitOrderTerm(t string) (string, bool) {
	for _, suffix := range []string{" desc", " DESC"} {
		if len(t) > len(suffix) && t[len(t)-len(suffix):] == suffix {
			return t[:len(t)-len(suffix)], true
		}
	}
	return t, false
}
