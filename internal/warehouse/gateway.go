package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"edgarqa/internal/apperr"
)

// Gateway is the safe, bounded, read-only access point to the
// warehouse: a Pool for connection checkout, a Cache for memoised
// results, and a parameterised executor that never concatenates
// caller-supplied values into SQL text.
type Gateway struct {
	pool   *Pool
	cache  *Cache
	logger *zap.Logger
}

// New builds a Gateway over an already-opened Pool and Cache.
func New(pool *Pool, cache *Cache, logger *zap.Logger) *Gateway {
	return &Gateway{pool: pool, cache: cache, logger: logger}
}

// Execute runs sql with params bound as placeholders (never
// interpolated) and returns the rows, unordered map form included for
// convenience. Transient storage errors and permanent (syntax/schema)
// errors are classified and surfaced as apperr.StorageTransient /
// apperr.StoragePermanent respectively; neither is retried at this
// layer (spec.md §4.1).
func (g *Gateway) Execute(ctx context.Context, query string, params []any) ([]Row, error) {
	conn, err := g.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, ErrPoolExhausted) {
			return nil, apperr.Wrap(apperr.PoolExhausted, "no warehouse connection available", err)
		}
		return nil, apperr.Wrap(apperr.ConnectionUnhealthy, "warehouse connection failed health probe", err)
	}
	defer conn.Release()

	rows, err := conn.DB().QueryContext(ctx, query, params...)
	if err != nil {
		conn.MarkUnhealthy()
		return nil, classify(err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

// ExecuteCached is Execute, memoised under Key(sql, params) with the
// Gateway's configured TTL and bounded size.
func (g *Gateway) ExecuteCached(ctx context.Context, query string, params []any, paramsForKey map[string]any) ([]Row, bool, error) {
	key := Key(query, paramsForKey)
	if rows, ok := g.cache.Get(key); ok {
		return rows, true, nil
	}
	rows, err := g.Execute(ctx, query, params)
	if err != nil {
		return nil, false, err
	}
	g.cache.Put(key, rows)
	return rows, false, nil
}

// CacheStats exposes the result cache's hit/miss counters.
func (g *Gateway) CacheStats() Stats { return g.cache.Stats() }

// ClearCache empties the result cache.
func (g *Gateway) ClearCache() { g.cache.Clear() }

// Close shuts down the pool. Called once, on process shutdown.
func (g *Gateway) Close() error { return g.pool.Close() }

func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, Row{Columns: append([]string(nil), cols...), Values: values})
	}
	return out, rows.Err()
}

// classify distinguishes transient storage failures (locking,
// busy-timeout, I/O) from permanent ones (syntax/schema) so the caller
// never sees a raw driver error.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr:
			return apperr.Wrap(apperr.StorageTransient, "warehouse busy", err)
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such column") || strings.Contains(msg, "no such table") || strings.Contains(msg, "syntax error") {
		return apperr.Wrap(apperr.StoragePermanent, "invalid query against warehouse schema", err)
	}
	return apperr.Wrap(apperr.StorageTransient, "warehouse execution failed", err)
}
