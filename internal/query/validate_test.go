package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
)

func testDataset() catalog.Dataset {
	return catalog.Dataset{
		FileID:        "transport-country-year",
		PhysicalTable: "transport_country_year",
		Columns: []catalog.Column{
			{Name: "country", Type: catalog.ColIdentifier},
			{Name: "year", Type: catalog.ColIntegerYear},
			{Name: "co2_tonnes", Type: catalog.ColMeasureTonnes},
			{Name: "data_source", Type: catalog.ColString},
		},
	}
}

func TestParseWhereScalarAndRange(t *testing.T) {
	d := testDataset()
	filters, err := parseWhere(d, map[string]any{
		"country": "Germany",
		"year":    map[string]any{"gte": 2015, "lte": 2020},
	})
	require.NoError(t, err)
	require.Len(t, filters, 2)
}

func TestParseWhereRejectsUnknownColumn(t *testing.T) {
	d := testDataset()
	_, err := parseWhere(d, map[string]any{"bogus": 1})
	require.Error(t, err)
	assert.Equal(t, apperr.UnknownColumn, apperr.KindOf(err))
}

func TestParseWhereRejectsUnsupportedRangeKey(t *testing.T) {
	d := testDataset()
	_, err := parseWhere(d, map[string]any{"year": map[string]any{"eq": 2020}})
	require.Error(t, err)
}

func TestSanitizeStringStripsForbiddenChars(t *testing.T) {
	got := sanitizeString(`Germany'; DROP TABLE x;--`)
	assert.NotContains(t, got, "'")
	assert.NotContains(t, got, ";")
}

func TestValidateLimitDefaultsAndClamps(t *testing.T) {
	lim, warning, err := validateLimit(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, lim)
	assert.Empty(t, warning)

	big := HardLimitCap + 500
	lim, warning, err = validateLimit(&big)
	require.NoError(t, err)
	assert.Equal(t, HardLimitCap, lim)
	assert.NotEmpty(t, warning)

	neg := -1
	_, _, err = validateLimit(&neg)
	require.Error(t, err)
}

func TestValidateLimitExplicitZeroIsEmptyNotError(t *testing.T) {
	zero := 0
	lim, warning, err := validateLimit(&zero)
	require.NoError(t, err)
	assert.Equal(t, 0, lim)
	assert.Empty(t, warning)
}

func TestRejectAliasKeysCatchesMisspelling(t *testing.T) {
	err := RejectAliasKeys([]byte(`{"key_col": "country_name"}`), map[string]string{"key_col": "key_column"})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestRejectAliasKeysAllowsCanonicalName(t *testing.T) {
	err := RejectAliasKeys([]byte(`{"key_column": "country_name"}`), map[string]string{"key_col": "key_column"})
	require.NoError(t, err)
}

func TestValidateColumnListRejectsTooMany(t *testing.T) {
	d := testDataset()
	cols := make([]string, MaxColumns+1)
	for i := range cols {
		cols[i] = "country"
	}
	err := validateColumnList(d, "select", cols)
	require.Error(t, err)
}

func TestValidateAggregationsRejectsNonNumeric(t *testing.T) {
	d := testDataset()
	err := validateAggregations(d, map[string]Aggregation{"country": AggSum})
	require.Error(t, err)
}

func TestSpecBuildUsesPlaceholdersNotInterpolation(t *testing.T) {
	d := testDataset()
	filters, err := parseWhere(d, map[string]any{"country": "Germany'; DROP TABLE x;--"})
	require.NoError(t, err)
	s := spec{table: d.PhysicalTable, selectCols: []string{"country"}, where: filters, limit: 10}
	sqlText, params := s.build()
	assert.NotContains(t, sqlText, "DROP TABLE")
	assert.Contains(t, sqlText, "?")
	require.Len(t, params, 2) // filter value + limit
}
