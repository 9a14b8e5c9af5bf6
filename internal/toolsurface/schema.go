package toolsurface

// Canonical parameter names. Every schema entry below and every engine
// dispatch closure in dispatch.go use these names verbatim; the Tool
// Surface never translates abbreviations. Only metrics.yoy rejects the
// key_col/value_col aliases as a caller error (query.RejectAliasKeys);
// other tools' argument decoders ignore keys they do not know.
const (
	pFileID       = "file_id"
	pSelect       = "select"
	pWhere        = "where"
	pGroupBy      = "group_by"
	pOrderBy      = "order_by"
	pAggregations = "aggregations"
	pLimit        = "limit"
	pYear         = "year"
	pMeasure      = "measure"
	pN            = "n"
	pAscending    = "ascending"
	pEntities     = "entities"
	pEntity       = "entity"
	pStartYear    = "start_year"
	pEndYear      = "end_year"
	pSector       = "sector"
	pLevel        = "level"
	pGrain        = "grain"
	pMinQuality   = "min_quality"
	pAgg          = "agg"
	pKeyColumn    = "key_column"
	pValueColumn  = "value_column"
	pBaseYear     = "base_year"
	pCompareYear  = "compare_year"
	pTopN         = "top_n"
	pDirection    = "direction"
)

var strType = Property{Type: "string"}
var intType = Property{Type: "integer"}
var numType = Property{Type: "number"}
var boolType = Property{Type: "boolean"}
var strArray = Property{Type: "array", Items: &PropertyItems{Type: "string"}}
var objType = Property{Type: "object"}

// toolSchemas is the single source of truth for every tool's
// parameters: the stdio transport's tools/list reply and the
// Orchestrator system prompt both render from this table (through the
// Registry), never a locally duplicated copy. The HTTP façade does not
// validate request bodies against it.
var toolSchemas = map[string]Schema{
	"list_emissions_datasets": {Type: "object", Required: nil, Properties: map[string]Property{}},
	"get_dataset_schema": {Type: "object", Required: []string{pFileID}, Properties: map[string]Property{
		pFileID: withDesc(strType, "dataset identifier from list_emissions_datasets"),
	}},
	"get_data_quality": {Type: "object", Required: nil, Properties: map[string]Property{}},
	"query": {Type: "object", Required: []string{pFileID}, Properties: map[string]Property{
		pFileID:       withDesc(strType, "dataset identifier"),
		pSelect:       withDesc(strArray, "columns to project; defaults to all declared columns"),
		pWhere:        withDesc(objType, "column name -> scalar, list (membership) or range object {gte,lte,gt,lt,in,contains}"),
		pGroupBy:      withDesc(strArray, "columns to group by"),
		pOrderBy:      withDesc(strArray, "columns to sort by, optionally suffixed ' desc'"),
		pAggregations: withDesc(objType, "column -> aggregate function (SUM, AVG, MIN, MAX, COUNT); result column is named FUNC_column"),
		pLimit:        withDesc(intType, "maximum rows returned, default 20, hard cap 1000; 0 returns no rows"),
	}},
	"top_n": {Type: "object", Required: []string{pFileID, pYear, pMeasure, pN}, Properties: map[string]Property{
		pFileID:    withDesc(strType, "dataset identifier"),
		pYear:      withDesc(intType, "year to rank within"),
		pMeasure:   withDesc(strType, "measure column to rank by"),
		pN:         withDesc(intType, "how many rows to return"),
		pAscending: withDesc(boolType, "rank lowest-first instead of highest-first"),
		pWhere:     withDesc(objType, "additional filters applied before ranking"),
	}},
	"compare_emissions": {Type: "object", Required: []string{pEntities, pSector, pYear}, Properties: map[string]Property{
		pEntities: withDesc(strArray, "place names to compare; each is resolved through the entity resolver independently"),
		pSector:   withDesc(strType, "emission sector"),
		pYear:     withDesc(intType, "year to compare within"),
		pLevel:    withDesc(strType, "geographic level hint: country, admin1 or city; inferred per entity when omitted"),
	}},
	"analyze_emissions_trend": {Type: "object", Required: []string{pEntity, pSector, pStartYear, pEndYear}, Properties: map[string]Property{
		pEntity:    withDesc(strType, "place name in any known form; resolved automatically"),
		pSector:    withDesc(strType, "emission sector"),
		pStartYear: withDesc(intType, "first year of the range, inclusive"),
		pEndYear:   withDesc(intType, "last year of the range, inclusive"),
		pGrain:     withDesc(strType, "temporal grain: year or month; default year"),
	}},
	"metrics.yoy": {Type: "object", Required: []string{pFileID, pKeyColumn, pBaseYear, pCompareYear}, Properties: map[string]Property{
		pFileID:      withDesc(strType, "dataset identifier, must be year-grain"),
		pKeyColumn:   withDesc(strType, "column to rank and group by, e.g. country_name"),
		pValueColumn: withDesc(strType, "measure column to compare; default emissions_tonnes"),
		pBaseYear:    withDesc(intType, "year to measure change from"),
		pCompareYear: withDesc(intType, "year to measure change to"),
		pTopN:        withDesc(intType, "how many ranked rows to return; default 10"),
		pDirection:   withDesc(strType, "drop or rise; which end of the ranking to return; default drop"),
	}},
	"analyze_monthly_trends": {Type: "object", Required: []string{pFileID, pEntity, pMeasure, pYear}, Properties: map[string]Property{
		pFileID:  withDesc(strType, "dataset identifier, must be month-grain"),
		pEntity:  withDesc(strType, "canonical entity name"),
		pMeasure: withDesc(strType, "measure column"),
		pYear:    withDesc(intType, "calendar year"),
	}},
	"detect_seasonal_patterns": {Type: "object", Required: []string{pFileID, pEntity, pMeasure, pYear}, Properties: map[string]Property{
		pFileID:  withDesc(strType, "dataset identifier, must be month-grain"),
		pEntity:  withDesc(strType, "canonical entity name"),
		pMeasure: withDesc(strType, "measure column"),
		pYear:    withDesc(intType, "calendar year"),
	}},
	"aggregate_across_sectors": {Type: "object", Required: []string{pLevel, pGrain, pEntity, pYear, pMeasure}, Properties: map[string]Property{
		pLevel:   withDesc(strType, "geographic level: country, admin1 or city"),
		pGrain:   withDesc(strType, "temporal grain: year or month"),
		pEntity:  withDesc(strType, "canonical entity name"),
		pYear:    withDesc(intType, "year"),
		pMeasure: withDesc(strType, "measure column, consistent across sector datasets"),
		pAgg:     withDesc(strType, "aggregate function across sectors; default SUM"),
	}},
	"smart_query_emissions": {Type: "object", Required: []string{pSector, pGrain, pEntity, pYear, pMeasure}, Properties: map[string]Property{
		pSector:  withDesc(strType, "emission sector"),
		pGrain:   withDesc(strType, "temporal grain: year or month"),
		pEntity:  withDesc(strType, "place name in any known form; resolved and cascaded automatically"),
		pYear:    withDesc(intType, "year"),
		pMeasure: withDesc(strType, "measure column"),
	}},
	"get_quality_filtered_data": {Type: "object", Required: []string{pFileID, pMinQuality}, Properties: map[string]Property{
		pFileID:     withDesc(strType, "dataset identifier"),
		pWhere:      withDesc(objType, "additional filters"),
		pMinQuality: withDesc(numType, "minimum quality score, 0..1"),
		pLimit:      withDesc(intType, "maximum rows returned"),
	}},
	"get_validated_records": {Type: "object", Required: []string{pFileID}, Properties: map[string]Property{
		pFileID: withDesc(strType, "dataset identifier, must declare a data_source column"),
		pWhere:  withDesc(objType, "additional filters"),
		pLimit:  withDesc(intType, "maximum rows returned"),
	}},
	"get_uncertainty_analysis": {Type: "object", Required: []string{pFileID, pEntity, pMeasure, pYear}, Properties: map[string]Property{
		pFileID:  withDesc(strType, "dataset identifier"),
		pEntity:  withDesc(strType, "canonical entity name"),
		pMeasure: withDesc(strType, "measure column"),
		pYear:    withDesc(intType, "year"),
	}},
}

func withDesc(p Property, desc string) Property {
	p.Description = desc
	return p
}

var toolDescriptions = map[string]string{
	"list_emissions_datasets":  "List every dataset available in the warehouse.",
	"get_dataset_schema":       "Describe a dataset's columns, temporal/spatial coverage and quality metadata.",
	"get_data_quality":         "Report the Sector Quality Block for every emission sector.",
	"query":                    "Run a filtered, optionally grouped and aggregated projection over one dataset.",
	"top_n":                    "Rank entities by a measure within one year.",
	"compare_emissions":        "Resolve and compare a measure across a set of entities for one year.",
	"analyze_emissions_trend":  "Resolve an entity and report a measure across a year range, with a derived direction.",
	"metrics.yoy":              "Rank entities by year-over-year change in a measure, biggest drop or rise first.",
	"analyze_monthly_trends":   "Report a monthly-grain measure across one calendar year for one entity.",
	"detect_seasonal_patterns": "Derive a seasonality score from a monthly-grain series.",
	"aggregate_across_sectors": "Combine a measure for one entity/year across every emission sector.",
	"smart_query_emissions":    "Resolve a place name through the city->admin1->country cascade, then query.",
	"get_quality_filtered_data": "Run a query restricted to rows or datasets meeting a minimum quality score.",
	"get_validated_records":    "Run a query restricted to non-synthetic, non-estimated records.",
	"get_uncertainty_analysis": "Report the 95% confidence bounds around a point estimate.",
}
