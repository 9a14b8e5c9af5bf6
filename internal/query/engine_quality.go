package query

import (
	"context"
	"strings"

	"edgarqa/internal/apperr"
)

// QualityFiltered runs Query restricted to MinQuality. When the dataset
// has per-row quality columns it adds a quality_score >= MinQuality
// filter to the query; otherwise it checks the dataset-level score from
// the Sector Quality Block before running the query.
func (e *Engine) QualityFiltered(ctx context.Context, args QualityFilteredArgs) (Result, error) {
	d, err := validateFileID(e.cat, args.FileID)
	if err != nil {
		return Result{}, err
	}

	if !d.HasQualityColumns() {
		if d.Quality.QualityScore < args.MinQuality {
			return Result{}, apperr.New(apperr.NoDataFound, "dataset-level quality score below threshold")
		}
		res, err := e.Query(ctx, QueryArgs{FileID: args.FileID, Where: args.Where, Limit: args.Limit})
		if err != nil {
			return Result{}, err
		}
		res.Meta.Warnings = append(res.Meta.Warnings, "quality filter applied at dataset level: no per-row quality column")
		return res, nil
	}

	where := cloneWhere(args.Where)
	where["quality_score"] = map[string]any{"gte": args.MinQuality}
	return e.Query(ctx, QueryArgs{FileID: args.FileID, Where: where, Limit: args.Limit})
}

// ValidatedRecords restricts a query to rows whose data_source column
// does not tag itself "synthetic" or "estimated" among its
// pipe-delimited source tags.
func (e *Engine) ValidatedRecords(ctx context.Context, args ValidatedRecordsArgs) (Result, error) {
	d, err := validateFileID(e.cat, args.FileID)
	if err != nil {
		return Result{}, err
	}
	if !d.HasColumn("data_source") {
		return Result{}, apperr.New(apperr.InvalidArgument, "dataset has no data_source column to validate against")
	}

	res, err := e.Query(ctx, QueryArgs{FileID: args.FileID, Where: args.Where, Limit: args.Limit})
	if err != nil {
		return Result{}, err
	}

	filtered := make([]Row, 0, len(res.Rows))
	for _, row := range res.Rows {
		src, _ := row["data_source"].(string)
		if isValidatedSource(src) {
			filtered = append(filtered, row)
		}
	}
	if len(filtered) == 0 {
		return Result{}, apperr.New(apperr.NoDataFound, "no validated (non-synthetic, non-estimated) records matched")
	}

	res.Rows = filtered
	res.Meta.RowCount = len(filtered)
	return res, nil
}

func isValidatedSource(src string) bool {
	for _, tag := range strings.Split(src, "|") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "synthetic" || tag == "estimated" {
			return false
		}
	}
	return true
}

// UncertaintyAnalysis reports the 95% confidence bounds around a point
// estimate: from per-row uncertainty columns when the dataset declares
// them, otherwise from the Sector Quality Block's uncertainty_pct.
func (e *Engine) UncertaintyAnalysis(ctx context.Context, args UncertaintyAnalysisArgs) (UncertaintyAnalysisResult, error) {
	d, err := validateFileID(e.cat, args.FileID)
	if err != nil {
		return UncertaintyAnalysisResult{}, err
	}
	if !d.HasColumn(args.Measure) {
		return UncertaintyAnalysisResult{}, apperr.New(apperr.UnknownColumn, "unknown measure column "+args.Measure).
			WithSuggestions(suggestColumn(d, args.Measure)...)
	}
	entityCol, yearCol := entityColumn(d), yearColumn(d)
	if entityCol == "" || yearCol == "" {
		return UncertaintyAnalysisResult{}, apperr.New(apperr.InvalidArgument, "dataset lacks entity/year columns required for uncertainty analysis")
	}

	selectCols := []string{args.Measure}
	hasRowUncertainty := d.HasColumn("uncertainty_pct")
	if hasRowUncertainty {
		selectCols = append(selectCols, "uncertainty_pct")
	}

	filters, err := parseWhere(d, map[string]any{entityCol: args.Entity, yearCol: args.Year})
	if err != nil {
		return UncertaintyAnalysisResult{}, err
	}
	s := spec{table: d.PhysicalTable, selectCols: selectCols, where: filters, limit: 1}
	sqlText, params := s.build()

	rows, err := e.gw.Execute(ctx, sqlText, params)
	if err != nil {
		return UncertaintyAnalysisResult{}, err
	}
	if err := checkRowResult(rows, args.FileID); err != nil {
		return UncertaintyAnalysisResult{}, err
	}

	point, _ := numericValue(rows[0], args.Measure)

	var uncertaintyPct float64
	source := "sector_quality_block"
	if hasRowUncertainty {
		if v, ok := numericValue(rows[0], "uncertainty_pct"); ok {
			uncertaintyPct = v
			source = "per_row"
		}
	}
	if source == "sector_quality_block" {
		uncertaintyPct = d.Quality.UncertaintyPct
	}

	margin := point * (uncertaintyPct / 100)
	return UncertaintyAnalysisResult{
		PointEstimate: point,
		LowerBound:    point - margin,
		UpperBound:    point + margin,
		Source:        source,
		Meta:          Meta{FileID: args.FileID, RowCount: 1, QualityMetadata: qualityMetadataFor(d)},
	}, nil
}
