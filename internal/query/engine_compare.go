package query

import (
	"context"
	"fmt"
	"math"
	"sort"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
)

// Compare resolves each requested entity through the Entity Resolver,
// fetches its single row for sector/year, then ranks the ones that
// resolved to data. An entity that doesn't resolve, or resolves but has
// no data, is surfaced as its own per_entity_rows entry rather than
// failing the whole call.
func (e *Engine) Compare(ctx context.Context, args CompareArgs) (CompareResult, error) {
	if len(args.Entities) == 0 {
		return CompareResult{}, apperr.New(apperr.InvalidArgument, "compare_emissions requires at least one entity")
	}

	var perEntity []CompareEntityRow
	var rankable []CompareRankEntry
	var lastQuality *QualityMetadata

	for _, raw := range args.Entities {
		ent, err := e.resolver.Resolve(raw, args.Level)
		if err != nil {
			var suggestions []string
			if ae, ok := apperr.As(err); ok {
				suggestions = ae.Suggestions
			}
			perEntity = append(perEntity, CompareEntityRow{Entity: raw, Error: "unresolved", Suggestions: suggestions})
			continue
		}

		fileID := e.fileIDFor(args.Sector, ent.Level, catalog.GrainYear)
		if fileID == "" {
			perEntity = append(perEntity, CompareEntityRow{Entity: raw, Resolved: ent.CanonicalName, Error: "no_data"})
			continue
		}
		d, err := e.cat.Schema(fileID)
		if err != nil {
			return CompareResult{}, err
		}
		entityCol, yearCol := entityColumn(d), yearColumn(d)
		if entityCol == "" || yearCol == "" || !d.HasColumn(defaultMeasureColumn) {
			perEntity = append(perEntity, CompareEntityRow{Entity: raw, Resolved: ent.CanonicalName, Error: "no_data"})
			continue
		}

		filters, err := parseWhere(d, map[string]any{entityCol: ent.CanonicalName, yearCol: args.Year})
		if err != nil {
			return CompareResult{}, err
		}
		s := spec{table: d.PhysicalTable, selectCols: d.ColumnNames(), where: filters, limit: 1}
		sqlText, params := s.build()

		rows, err := e.gw.Execute(ctx, sqlText, params)
		if err != nil {
			return CompareResult{}, err
		}
		if len(rows) == 0 {
			perEntity = append(perEntity, CompareEntityRow{Entity: raw, Resolved: ent.CanonicalName, Error: "no_data"})
			continue
		}

		val, _ := numericValue(rows[0], defaultMeasureColumn)
		lastQuality = qualityMetadataFor(d)
		perEntity = append(perEntity, CompareEntityRow{Entity: raw, Resolved: ent.CanonicalName, Row: toJSONRows(rows)[0]})
		rankable = append(rankable, CompareRankEntry{Entity: ent.CanonicalName, Value: val})
	}

	if len(rankable) == 0 {
		return CompareResult{}, apperr.New(apperr.NoDataFound, "no requested entity resolved to data")
	}

	sort.SliceStable(rankable, func(i, j int) bool { return rankable[i].Value > rankable[j].Value })
	for i := range rankable {
		rankable[i].Rank = i + 1
	}

	top := rankable[0].Value
	deltas := make([]CompareDelta, len(rankable))
	for i, r := range rankable {
		abs := top - r.Value
		var pct float64
		if top != 0 {
			pct = abs / top * 100
		}
		deltas[i] = CompareDelta{Entity: r.Entity, AbsoluteDelta: abs, PercentDelta: pct}
	}

	return CompareResult{
		PerEntityRows: perEntity,
		Ranking:       rankable,
		Deltas:        deltas,
		Meta:          Meta{RowCount: len(rankable), QualityMetadata: lastQuality},
	}, nil
}

// cagrStableThresholdPct is the absolute compound annual growth rate,
// in percentage points, below which Trend reports "stable" rather than
// "increasing"/"decreasing".
const cagrStableThresholdPct = 1.0

// Trend resolves entity through the Entity Resolver, then reports
// emissions_tonnes across [StartYear, EndYear] for that entity's
// sector/grain dataset, classifying the series' direction from its
// compound annual growth rate.
func (e *Engine) Trend(ctx context.Context, args TrendArgs) (TrendResult, error) {
	if args.EndYear < args.StartYear {
		return TrendResult{}, apperr.New(apperr.InvalidArgument, "end_year must be >= start_year")
	}
	grain := args.Grain
	if grain == "" {
		grain = catalog.GrainYear
	}

	ent, err := e.resolver.Resolve(args.Entity, "")
	if err != nil {
		return TrendResult{}, err
	}
	fileID := e.fileIDFor(args.Sector, ent.Level, grain)
	if fileID == "" {
		return TrendResult{}, apperr.New(apperr.NoDataFound, fmt.Sprintf("no dataset for sector %s at %s/%s", args.Sector, ent.Level, grain))
	}
	d, err := e.cat.Schema(fileID)
	if err != nil {
		return TrendResult{}, err
	}
	if !d.HasColumn(defaultMeasureColumn) {
		return TrendResult{}, apperr.New(apperr.UnknownColumn, "dataset lacks "+defaultMeasureColumn).
			WithSuggestions(suggestColumn(d, defaultMeasureColumn)...)
	}
	yearCol, entityCol := yearColumn(d), entityColumn(d)
	if yearCol == "" || entityCol == "" {
		return TrendResult{}, apperr.New(apperr.InvalidArgument, "dataset lacks year/entity columns required for a trend")
	}

	filters, err := parseWhere(d, map[string]any{
		entityCol: ent.CanonicalName,
		yearCol:   map[string]any{"gte": args.StartYear, "lte": args.EndYear},
	})
	if err != nil {
		return TrendResult{}, err
	}

	s := spec{
		table:      d.PhysicalTable,
		selectCols: []string{yearCol, defaultMeasureColumn},
		where:      filters,
		orderBy:    []orderTerm{{column: yearCol}},
		limit:      HardLimitCap,
	}
	sqlText, params := s.build()

	rows, err := e.gw.Execute(ctx, sqlText, params)
	if err != nil {
		return TrendResult{}, err
	}
	if err := checkRowResult(rows, fileID); err != nil {
		return TrendResult{}, err
	}

	first, firstOK := numericValue(rows[0], defaultMeasureColumn)
	last, lastOK := numericValue(rows[len(rows)-1], defaultMeasureColumn)
	years := args.EndYear - args.StartYear

	var cagr float64
	if firstOK && lastOK && first > 0 && years > 0 {
		cagr = (math.Pow(last/first, 1.0/float64(years)) - 1) * 100
	}
	var totalChangePct float64
	if firstOK && lastOK && first != 0 {
		totalChangePct = (last - first) / first * 100
	}

	direction := "stable"
	switch {
	case cagr > cagrStableThresholdPct:
		direction = "increasing"
	case cagr < -cagrStableThresholdPct:
		direction = "decreasing"
	}

	return TrendResult{
		Result: Result{
			Rows: toJSONRows(rows),
			Meta: Meta{FileID: fileID, RowCount: len(rows), QualityMetadata: qualityMetadataFor(d)},
		},
		TotalChangePercent: totalChangePct,
		CAGRPercent:        cagr,
		Direction:          direction,
	}, nil
}

// Yoy ranks every distinct key_column value in file_id by how much its
// value_column moved between base_year and compare_year, returning the
// top_n rows in the requested direction. A zero base value yields a nil
// PctChange for that row rather than an error or an infinite ratio.
func (e *Engine) Yoy(ctx context.Context, args YoyArgs) (YoyResult, error) {
	d, err := validateFileID(e.cat, args.FileID)
	if err != nil {
		return YoyResult{}, err
	}
	if d.Grain != catalog.GrainYear {
		return YoyResult{}, apperr.New(apperr.GrainMismatch, "metrics.yoy requires a year-grain dataset, got "+string(d.Grain))
	}

	valueCol := args.ValueColumn
	if valueCol == "" {
		valueCol = defaultMeasureColumn
	}
	if !d.HasColumn(args.KeyColumn) {
		return YoyResult{}, apperr.New(apperr.UnknownColumn, "unknown key_column "+args.KeyColumn).
			WithSuggestions(suggestColumn(d, args.KeyColumn)...)
	}
	if !d.HasColumn(valueCol) {
		return YoyResult{}, apperr.New(apperr.UnknownColumn, "unknown value_column "+valueCol).
			WithSuggestions(suggestColumn(d, valueCol)...)
	}
	yearCol := yearColumn(d)
	if yearCol == "" {
		return YoyResult{}, apperr.New(apperr.InvalidArgument, "dataset has no year column, cannot compute metrics.yoy")
	}

	direction := args.Direction
	if direction == "" {
		direction = "drop"
	}
	if direction != "drop" && direction != "rise" {
		return YoyResult{}, apperr.New(apperr.InvalidArgument, "direction must be drop or rise, got "+direction)
	}
	topN := args.TopN
	if topN <= 0 {
		topN = defaultYoyTopN
	}

	filters, err := parseWhere(d, map[string]any{yearCol: map[string]any{"in": []any{args.BaseYear, args.CompareYear}}})
	if err != nil {
		return YoyResult{}, err
	}

	s := spec{table: d.PhysicalTable, selectCols: []string{args.KeyColumn, valueCol, yearCol}, where: filters}
	sqlText, params := s.build()

	rows, err := e.gw.Execute(ctx, sqlText, params)
	if err != nil {
		return YoyResult{}, err
	}
	if err := checkRowResult(rows, args.FileID); err != nil {
		return YoyResult{}, err
	}

	type byYear struct {
		base, compare     float64
		baseOK, compareOK bool
	}
	seen := make(map[string]*byYear)
	var order []string
	for _, r := range rows {
		kv, ok := r.Get(args.KeyColumn)
		if !ok {
			continue
		}
		key := fmt.Sprint(kv)
		yv, _ := r.Get(yearCol)
		yi, _ := toInt(yv)
		val, _ := numericValue(r, valueCol)

		entry, exists := seen[key]
		if !exists {
			entry = &byYear{}
			seen[key] = entry
			order = append(order, key)
		}
		switch yi {
		case args.BaseYear:
			entry.base, entry.baseOK = val, true
		case args.CompareYear:
			entry.compare, entry.compareOK = val, true
		}
	}

	yoyRows := make([]YoyRow, 0, len(order))
	for _, key := range order {
		entry := seen[key]
		if !entry.baseOK || !entry.compareOK {
			continue
		}
		abs := entry.compare - entry.base
		var pct *float64
		if entry.base != 0 {
			p := abs / entry.base * 100
			pct = &p
		}
		yoyRows = append(yoyRows, YoyRow{
			Key: key, BaseValue: entry.base, CompareValue: entry.compare,
			AbsoluteChange: abs, PctChange: pct,
		})
	}

	sort.SliceStable(yoyRows, func(i, j int) bool {
		if direction == "drop" {
			return yoyRows[i].AbsoluteChange < yoyRows[j].AbsoluteChange
		}
		return yoyRows[i].AbsoluteChange > yoyRows[j].AbsoluteChange
	})
	if len(yoyRows) > topN {
		yoyRows = yoyRows[:topN]
	}

	return YoyResult{
		Rows: yoyRows,
		Meta: Meta{FileID: args.FileID, RowCount: len(yoyRows), QualityMetadata: qualityMetadataFor(d)},
	}, nil
}

func numericValue(r interface{ Get(string) (any, bool) }, col string) (float64, bool) {
	v, ok := r.Get(col)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
