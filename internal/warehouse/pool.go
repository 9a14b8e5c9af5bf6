package warehouse

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// PoolConfig configures the bounded connection pool.
type PoolConfig struct {
	// BaseSize is the steady-state number of connections.
	BaseSize int
	// Overflow is the number of additional connections allowed under
	// load; BaseSize+Overflow is the hard ceiling.
	Overflow int
	// AcquireTimeout bounds how long Acquire blocks for a free slot.
	AcquireTimeout time.Duration
}

// Pool is a bounded, health-checked connection pool over a read-only
// SQLite database, opened exactly once and never written to. The pool
// governs logical checkouts (the "acquire/release" contract from
// spec.md §4.1); the underlying *sql.DB manages the physical
// connections beneath it, sized to the same ceiling.
type Pool struct {
	db     *sql.DB
	tokens chan struct{}
	cfg    PoolConfig
	logger *zap.Logger
}

// Open opens dbPath read-only (enforced at the driver level via the
// mode=ro DSN parameter, never left to convention) and returns a Pool
// sized per cfg. Matches the teacher's PRAGMA-setting pattern in
// internal/store/local_core.go, adapted to a read-only analytical
// workload instead of a single-writer local store.
func Open(dbPath string, cfg PoolConfig, logger *zap.Logger) (*Pool, error) {
	if cfg.BaseSize <= 0 {
		cfg.BaseSize = 10
	}
	if cfg.Overflow < 0 {
		cfg.Overflow = 0
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_query_only=1&cache=shared", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening warehouse at %s: %w", dbPath, err)
	}
	ceiling := cfg.BaseSize + cfg.Overflow
	db.SetMaxOpenConns(ceiling)
	db.SetMaxIdleConns(cfg.BaseSize)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging warehouse at %s: %w", dbPath, err)
	}

	p := &Pool{
		db:     db,
		tokens: make(chan struct{}, ceiling),
		cfg:    cfg,
		logger: logger,
	}
	for i := 0; i < ceiling; i++ {
		p.tokens <- struct{}{}
	}
	return p, nil
}

// Conn is a scoped connection checkout; the caller must call Release
// on every exit path (typically via defer).
type Conn struct {
	raw     *sql.Conn
	pool    *Pool
	healthy bool
}

// DB exposes the underlying *sql.Conn for query execution.
func (c *Conn) DB() *sql.Conn { return c.raw }

// MarkUnhealthy flags the connection for a probe on its next checkout
// rather than being trusted as-is (spec.md §4.1: "on any execution
// error the connection is returned but marked for probe on next
// checkout"). Since database/sql already re-validates pooled
// connections internally, this closes the physical connection outright
// so the next checkout is guaranteed to get a fresh one.
func (c *Conn) MarkUnhealthy() { c.healthy = false }

// Release returns the checkout token and closes the physical
// connection if it was marked unhealthy.
func (c *Conn) Release() {
	if !c.healthy {
		// Returning driver.ErrBadConn from Raw makes database/sql discard
		// the physical connection instead of pooling it.
		_ = c.raw.Raw(func(any) error { return driver.ErrBadConn })
		_ = c.raw.Close()
	} else {
		_ = c.raw.Close() // return to *sql.DB's own pool
	}
	select {
	case c.pool.tokens <- struct{}{}:
	default:
	}
}

// Acquire checks out a connection, blocking up to AcquireTimeout for a
// free slot. It probes the connection with a trivial query; on probe
// failure it returns ErrConnectionUnhealthy and the slot is released
// immediately so the caller's single retry has a fair chance at a
// healthy connection.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	waitCtx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	select {
	case <-p.tokens:
	case <-waitCtx.Done():
		return nil, ErrPoolExhausted
	}

	raw, err := p.db.Conn(ctx)
	if err != nil {
		p.tokens <- struct{}{}
		return nil, fmt.Errorf("checking out connection: %w", err)
	}

	if _, err := raw.ExecContext(ctx, "SELECT 1"); err != nil {
		_ = raw.Close()
		p.tokens <- struct{}{}
		return nil, ErrConnectionUnhealthy
	}

	return &Conn{raw: raw, pool: p, healthy: true}, nil
}

// Close shuts down every connection. Called once, on process shutdown.
func (p *Pool) Close() error {
	return p.db.Close()
}
