package query

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"edgarqa/internal/apperr"
	"edgarqa/internal/catalog"
)

// sectorFetch is one sector's outcome from the fan-out in
// AggregateAcrossSectors: either a value and its quality metadata, or a
// warning explaining why the sector contributed nothing.
type sectorFetch struct {
	sector  catalog.Sector
	value   float64
	quality *QualityMetadata
	warning string
	found   bool
}

// AggregateAcrossSectors sums (or, with AggAvg, averages) a measure for one
// entity/year across every sector dataset sharing Level and Grain. Each
// sector is an independent SQLite query against the pooled Gateway, so
// they run concurrently through an errgroup bounded by the pool's own
// connection ceiling rather than sequentially.
func (e *Engine) AggregateAcrossSectors(ctx context.Context, args AggregateAcrossSectorsArgs) (AggregateAcrossSectorsResult, error) {
	agg := args.Agg
	if agg == "" {
		agg = AggSum
	}

	results := make([]sectorFetch, len(catalog.AllSectors))
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, sector := range catalog.AllSectors {
		i, sector := i, sector
		g.Go(func() error {
			fetch, err := e.fetchSectorValue(gctx, sector, args)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = fetch
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AggregateAcrossSectorsResult{}, err
	}

	bySector := make(map[catalog.Sector]float64)
	var total float64
	var lastQuality *QualityMetadata
	var warnings []string

	for _, fetch := range results {
		if fetch.warning != "" {
			warnings = append(warnings, fetch.warning)
		}
		if !fetch.found {
			continue
		}
		bySector[fetch.sector] = fetch.value
		total += fetch.value
		lastQuality = fetch.quality
	}

	if len(bySector) == 0 {
		return AggregateAcrossSectorsResult{}, apperr.New(apperr.NoDataFound, "no sector had data for this entity/year/measure")
	}
	if agg == AggAvg {
		total /= float64(len(bySector))
	}

	return AggregateAcrossSectorsResult{
		BySector: bySector,
		Total:    total,
		Meta:     Meta{RowCount: len(bySector), Warnings: warnings, QualityMetadata: lastQuality},
	}, nil
}

// fetchSectorValue runs one sector's single-row lookup. A missing
// dataset, missing measure column or empty result is reported as a
// warning rather than an error; only a genuine query failure (bad
// filter, unhealthy connection) aborts the whole fan-out.
func (e *Engine) fetchSectorValue(ctx context.Context, sector catalog.Sector, args AggregateAcrossSectorsArgs) (sectorFetch, error) {
	fileID := e.fileIDFor(sector, args.Level, args.Grain)
	if fileID == "" {
		return sectorFetch{sector: sector, warning: "no dataset for sector " + string(sector) + " at this level/grain"}, nil
	}
	d, err := e.cat.Schema(fileID)
	if err != nil {
		return sectorFetch{sector: sector, warning: string(sector) + ": dataset " + fileID + " not in catalog"}, nil
	}
	if !d.HasColumn(args.Measure) {
		return sectorFetch{sector: sector, warning: string(sector) + ": dataset lacks measure " + args.Measure}, nil
	}
	entityCol, yearCol := entityColumn(d), yearColumn(d)
	if entityCol == "" || yearCol == "" {
		return sectorFetch{}, nil
	}

	filters, err := parseWhere(d, map[string]any{entityCol: args.Entity, yearCol: args.Year})
	if err != nil {
		return sectorFetch{}, err
	}
	s := spec{table: d.PhysicalTable, selectCols: []string{args.Measure}, where: filters, limit: 1}
	sqlText, params := s.build()

	rows, err := e.gw.Execute(ctx, sqlText, params)
	if err != nil {
		return sectorFetch{}, err
	}
	if len(rows) == 0 {
		return sectorFetch{sector: sector, warning: string(sector) + ": no row for this entity/year"}, nil
	}
	v, ok := numericValue(rows[0], args.Measure)
	if !ok {
		return sectorFetch{}, nil
	}
	return sectorFetch{sector: sector, value: v, quality: qualityMetadataFor(d), found: true}, nil
}

// SmartQuery resolves an entity name through the cascade (city -> admin1
// -> country) before delegating to Query, carrying the resolution trace
// in its result.
func (e *Engine) SmartQuery(ctx context.Context, args SmartQueryArgs) (SmartQueryResult, error) {
	cascade := e.resolver.Cascade(ctx, args.Entity, args.Sector, args.Year, args.Grain, e.fileIDFor, e.probe)
	if !cascade.Resolved {
		return SmartQueryResult{}, apperr.New(apperr.EntityUnresolved, "could not resolve "+args.Entity+" to any dataset with data")
	}

	d, err := e.cat.Schema(cascade.FileID)
	if err != nil {
		return SmartQueryResult{}, err
	}
	entityCol, yearCol := entityColumn(d), yearColumn(d)
	filters, err := parseWhere(d, map[string]any{entityCol: cascade.Entity.CanonicalName, yearCol: args.Year})
	if err != nil {
		return SmartQueryResult{}, err
	}

	s := spec{table: d.PhysicalTable, selectCols: d.ColumnNames(), where: filters, limit: DefaultLimit}
	sqlText, params := s.build()

	rows, err := e.gw.Execute(ctx, sqlText, params)
	if err != nil {
		return SmartQueryResult{}, err
	}
	if err := checkRowResult(rows, cascade.FileID); err != nil {
		return SmartQueryResult{}, err
	}

	trace := make([]TraceStep, len(cascade.Trace))
	for i, t := range cascade.Trace {
		trace[i] = TraceStep{Level: string(t.Level), Status: t.Status}
	}

	return SmartQueryResult{
		Result: Result{
			Rows: toJSONRows(rows),
			Meta: Meta{FileID: cascade.FileID, RowCount: len(rows), QualityMetadata: qualityMetadataFor(d), FallbackTrace: trace},
		},
		ResolvedEntity: cascade.Entity.CanonicalName,
		ResolvedLevel:  string(cascade.Entity.Level),
	}, nil
}
