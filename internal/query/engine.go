package query

import (
	"context"
	"fmt"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
	"edgarqa/internal/entity"
	"edgarqa/internal/warehouse"
)

// Engine is the validating, parameterised query surface over the
// Catalog and the Warehouse Gateway. It holds no per-request state: one
// Engine is shared by every concurrent tool call.
type Engine struct {
	cat      *catalog.Catalog
	gw       *warehouse.Gateway
	resolver *entity.Resolver

	// index maps (sector, level, grain) -> file_id, built once at
	// construction so Cascade and SmartQuery can locate the dataset
	// for a fallback level without scanning the catalog per call.
	index map[indexKey]string
}

type indexKey struct {
	sector catalog.Sector
	level  catalog.Level
	grain  catalog.Grain
}

// New builds an Engine over an already-loaded Catalog, Gateway and
// Resolver.
func New(cat *catalog.Catalog, gw *warehouse.Gateway, resolver *entity.Resolver) *Engine {
	idx := make(map[indexKey]string)
	for _, d := range cat.ListDatasets() {
		idx[indexKey{d.Sector, d.Level, d.Grain}] = d.FileID
	}
	return &Engine{cat: cat, gw: gw, resolver: resolver, index: idx}
}

// Catalog exposes the Engine's backing Catalog, for components (e.g. the
// Tool Surface's list_files/get_schema) that need dataset metadata
// without re-loading the manifest.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// CacheStats exposes the Gateway's result-cache counters.
func (e *Engine) CacheStats() warehouse.Stats { return e.gw.CacheStats() }

// ClearCache empties the Gateway's result cache.
func (e *Engine) ClearCache() { e.gw.ClearCache() }

// Ping verifies the warehouse connection is reachable, backing the
// health endpoint.
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.gw.Execute(ctx, "SELECT 1", nil)
	return err
}

// fileIDFor resolves the dataset file_id for a (sector, level, grain)
// triple, or "" if no dataset in the catalog covers it. Passed to
// entity.Cascade as its fileIDFor argument.
func (e *Engine) fileIDFor(sector catalog.Sector, level catalog.Level, grain catalog.Grain) string {
	return e.index[indexKey{sector, level, grain}]
}

// probe implements entity.DataProbe against the warehouse: does
// fileID have at least one row for entity in year?
func (e *Engine) probe(ctx context.Context, fileID, entityName string, year int) (bool, error) {
	if fileID == "" {
		return false, nil
	}
	d, err := e.cat.Schema(fileID)
	if err != nil {
		return false, err
	}
	yearCol := yearColumn(d)
	entityCol := entityColumn(d)
	if yearCol == "" || entityCol == "" {
		return false, nil
	}
	sqlText := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = ? AND %s = ? LIMIT 1`, quoteIdent(d.PhysicalTable), quoteIdent(entityCol), quoteIdent(yearCol))
	rows, err := e.gw.Execute(ctx, sqlText, []any{entityName, year})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// yearColumn and entityColumn locate the conventional columns every
// dataset declares: the integer-year temporal key and the place-name
// identifier. Datasets are authored with these names by convention
// (SPEC_FULL.md §3.1); a dataset missing either is not cascade-probeable.
func yearColumn(d catalog.Dataset) string {
	for _, c := range d.Columns {
		if c.Type == catalog.ColIntegerYear {
			return c.Name
		}
	}
	return ""
}

func entityColumn(d catalog.Dataset) string {
	for _, c := range d.Columns {
		if c.Type == catalog.ColIdentifier {
			return c.Name
		}
	}
	return ""
}

// checkRowResult converts an empty result set into apperr.NoDataFound,
// the uniform "found nothing" signal every operation returns instead of
// an empty-but-successful payload (spec.md §4.4 edge cases).
func checkRowResult(rows []warehouse.Row, fileID string) error {
	if len(rows) == 0 {
		return apperr.New(apperr.NoDataFound, fmt.Sprintf("no rows matched in dataset %q", fileID))
	}
	return nil
}
