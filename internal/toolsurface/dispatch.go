package toolsurface

import (
	"context"
	"encoding/json"

	"edgarqa/internal/query"
)

// Build assembles the full tool table over an already-constructed Query
// Engine and returns a Registry ready for any transport to serve.
func Build(engine *query.Engine) *Registry {
	r := NewRegistry()
	for name, def := range definitions(engine) {
		def.Name = name
		def.Description = toolDescriptions[name]
		def.Schema = toolSchemas[name]
		if err := r.Register(def); err != nil {
			panic(err) // programmer error: duplicate name in definitions()
		}
	}
	return r
}

// yoyAliases are the misspelled parameter names spec.md §8 scenario 5
// requires metrics.yoy to reject explicitly, each pointing at its
// canonical replacement.
var yoyAliases = map[string]string{
	"key_col":   "key_column",
	"value_col": "value_column",
}

func definitions(e *query.Engine) map[string]*ToolDef {
	return map[string]*ToolDef{
		"list_emissions_datasets": {Execute: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return e.Catalog().ListDatasets(), nil
		}},
		"get_dataset_schema": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				FileID string `json:"file_id"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.Catalog().Schema(a.FileID)
		}},
		"get_data_quality": {Execute: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return e.Catalog().QualityBlocks(), nil
		}},
		"query": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.QueryArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.Query(ctx, a)
		}},
		"top_n": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.TopNArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.TopN(ctx, a)
		}},
		"compare_emissions": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.CompareArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.Compare(ctx, a)
		}},
		"analyze_emissions_trend": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.TrendArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.Trend(ctx, a)
		}},
		"metrics.yoy": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			if err := query.RejectAliasKeys(args, yoyAliases); err != nil {
				return nil, err
			}
			var a query.YoyArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.Yoy(ctx, a)
		}},
		"analyze_monthly_trends": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.MonthlyTrendsArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.MonthlyTrends(ctx, a)
		}},
		"detect_seasonal_patterns": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.SeasonalArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.Seasonal(ctx, a)
		}},
		"aggregate_across_sectors": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.AggregateAcrossSectorsArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.AggregateAcrossSectors(ctx, a)
		}},
		"smart_query_emissions": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.SmartQueryArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.SmartQuery(ctx, a)
		}},
		"get_quality_filtered_data": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.QualityFilteredArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.QualityFiltered(ctx, a)
		}},
		"get_validated_records": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.ValidatedRecordsArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.ValidatedRecords(ctx, a)
		}},
		"get_uncertainty_analysis": {Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a query.UncertaintyAnalysisArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return e.UncertaintyAnalysis(ctx, a)
		}},
	}
}
