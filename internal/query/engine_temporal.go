package query

import (
	"context"
	"math"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
)

// MonthlyTrends reports a monthly-grain measure across one calendar
// year for one entity, ordered by month.
func (e *Engine) MonthlyTrends(ctx context.Context, args MonthlyTrendsArgs) (Result, error) {
	d, err := validateFileID(e.cat, args.FileID)
	if err != nil {
		return Result{}, err
	}
	if err := requireMonthlyGrain(d.Grain); err != nil {
		return Result{}, err
	}
	if !d.HasColumn(args.Measure) {
		return Result{}, apperr.New(apperr.UnknownColumn, "unknown measure column "+args.Measure).
			WithSuggestions(suggestColumn(d, args.Measure)...)
	}
	monthCol, entityCol, yearCol := monthColumn(d), entityColumn(d), yearColumn(d)
	if monthCol == "" || entityCol == "" || yearCol == "" {
		return Result{}, apperr.New(apperr.InvalidArgument, "dataset lacks month/entity/year columns required for a monthly trend")
	}

	filters, err := parseWhere(d, map[string]any{entityCol: args.Entity, yearCol: args.Year})
	if err != nil {
		return Result{}, err
	}

	s := spec{
		table:      d.PhysicalTable,
		selectCols: []string{monthCol, args.Measure},
		where:      filters,
		orderBy:    []orderTerm{{column: monthCol}},
		limit:      12,
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
		Meta: Meta{FileID: args.FileID, RowCount: len(rows), QualityMetadata: qualityMetadataFor(d)},
	}, nil
}

// Seasonal derives a seasonality score (the coefficient of variation of
// the monthly series, 0 meaning perfectly flat) plus the peak and
// trough months.
func (e *Engine) Seasonal(ctx context.Context, args SeasonalArgs) (SeasonalResult, error) {
	d, err := validateFileID(e.cat, args.FileID)
	if err != nil {
		return SeasonalResult{}, err
	}
	monthCol := monthColumn(d)

	base, err := e.MonthlyTrends(ctx, MonthlyTrendsArgs{FileID: args.FileID, Entity: args.Entity, Measure: args.Measure, Year: args.Year})
	if err != nil {
		return SeasonalResult{}, err
	}

	var values []float64
	peakMonth, troughMonth := 0, 0
	peakVal, troughVal := math.Inf(-1), math.Inf(1)
	for _, row := range base.Rows {
		m, _ := toInt(row[monthCol])
		v, ok := toFloat(row[args.Measure])
		if !ok {
			continue
		}
		values = append(values, v)
		if v > peakVal {
			peakVal, peakMonth = v, m
		}
		if v < troughVal {
			troughVal, troughMonth = v, m
		}
	}

	return SeasonalResult{
		Result:           base,
		SeasonalityScore: coefficientOfVariation(values),
		PeakMonth:        peakMonth,
		TroughMonth:      troughMonth,
	}, nil
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / mean
}

func requireMonthlyGrain(g catalog.Grain) error {
	if g != catalog.GrainMonth {
		return apperr.New(apperr.GrainMismatch, "operation requires a month-grain dataset, got "+string(g))
	}
	return nil
}

func monthColumn(d catalog.Dataset) string {
	for _, c := range d.Columns {
		if c.Type == catalog.ColIntegerMonth {
			return c.Name
		}
	}
	return ""
}
