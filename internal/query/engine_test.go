package query

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
	"edgarqa/internal/entity"
	"edgarqa/internal/warehouse"
)

func seedWarehouse(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warehouse.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE transport_country_year (
			country TEXT, year INTEGER, emissions_tonnes REAL, data_source TEXT
		);
		INSERT INTO transport_country_year VALUES
			('Germany', 2019, 100.0, 'measured'),
			('Germany', 2020, 110.0, 'measured'),
			('Germany', 2021, 121.0, 'measured|synthetic'),
			('France',  2020, 90.0, 'measured'),
			('France',  2021, 72.0, 'measured');
	`)
	require.NoError(t, err)
	return path
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(writeManifest(t))
	require.NoError(t, err)
	return c
}

func writeManifest(t *testing.T) string {
	t.Helper()
	// Minimal manifest identical in shape to the on-disk format, written
	// to a temp file so catalog.Load exercises its real YAML path rather
	// than a hand-built struct.
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	content := `
datasets:
  - file_id: transport-country-year
    sector: transport
    level: country
    grain: year
    physical_table: transport_country_year
    start_year: 2015
    end_year: 2023
    columns:
      - name: country
        type: identifier
      - name: year
        type: integer-year
      - name: emissions_tonnes
        type: measure-tonnes
      - name: data_source
        type: string
sector_quality:
  transport:
    quality_score: 0.9
    confidence_tier: HIGH
    uncertainty_pct: 5
    external_sources: ["IEA"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	dbPath := seedWarehouse(t)
	pool, err := warehouse.Open(dbPath, warehouse.PoolConfig{BaseSize: 2, Overflow: 1, AcquireTimeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	cache := warehouse.NewCache(time.Minute, 100)
	gw := warehouse.New(pool, cache, zap.NewNop())
	cat := testCatalog(t)
	return New(cat, gw, entity.New())
}

func TestEngineQueryReturnsRows(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(context.Background(), QueryArgs{FileID: "transport-country-year", Where: map[string]any{"country": "Germany"}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	require.NotNil(t, res.Meta.QualityMetadata)
}

func TestEngineQueryNoDataFound(t *testing.T) {
	e := newEngine(t)
	_, err := e.Query(context.Background(), QueryArgs{FileID: "transport-country-year", Where: map[string]any{"country": "Nowhere"}})
	require.Error(t, err)
	require.Equal(t, apperr.NoDataFound, apperr.KindOf(err))
}

func TestEngineTrendDirection(t *testing.T) {
	e := newEngine(t)
	res, err := e.Trend(context.Background(), TrendArgs{Entity: "Germany", Sector: catalog.SectorTransport, StartYear: 2019, EndYear: 2021})
	require.NoError(t, err)
	require.Equal(t, "increasing", res.Direction)
	require.InDelta(t, 21.0, res.TotalChangePercent, 0.01)
}

func TestEngineYoyRanksEntitiesByDrop(t *testing.T) {
	e := newEngine(t)
	res, err := e.Yoy(context.Background(), YoyArgs{
		FileID: "transport-country-year", KeyColumn: "country",
		BaseYear: 2020, CompareYear: 2021, Direction: "drop", TopN: 5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Rows)
	require.Equal(t, "France", res.Rows[0].Key)
	require.NotNil(t, res.Rows[0].PctChange)
	require.InDelta(t, -20.0, *res.Rows[0].PctChange, 0.01)
}

func TestEngineYoyRejectsUnknownKeyColumn(t *testing.T) {
	e := newEngine(t)
	_, err := e.Yoy(context.Background(), YoyArgs{FileID: "transport-country-year", KeyColumn: "bogus", BaseYear: 2020, CompareYear: 2021})
	require.Error(t, err)
	require.Equal(t, apperr.UnknownColumn, apperr.KindOf(err))
}

func TestEngineCompareRanksAndResolves(t *testing.T) {
	e := newEngine(t)
	res, err := e.Compare(context.Background(), CompareArgs{
		Entities: []string{"Germany", "France", "Nowhereland"},
		Sector:   catalog.SectorTransport,
		Year:     2020,
	})
	require.NoError(t, err)
	require.Len(t, res.PerEntityRows, 3)
	require.Len(t, res.Ranking, 2)
	require.Equal(t, "Germany", res.Ranking[0].Entity)
	require.Equal(t, 1, res.Ranking[0].Rank)

	var unresolved *CompareEntityRow
	for i := range res.PerEntityRows {
		if res.PerEntityRows[i].Entity == "Nowhereland" {
			unresolved = &res.PerEntityRows[i]
		}
	}
	require.NotNil(t, unresolved)
	require.Equal(t, "unresolved", unresolved.Error)
}

func TestEngineValidatedRecordsExcludesSynthetic(t *testing.T) {
	e := newEngine(t)
	res, err := e.ValidatedRecords(context.Background(), ValidatedRecordsArgs{FileID: "transport-country-year", Where: map[string]any{"country": "Germany"}})
	require.NoError(t, err)
	for _, r := range res.Rows {
		require.NotContains(t, r["data_source"], "synthetic")
	}
}
