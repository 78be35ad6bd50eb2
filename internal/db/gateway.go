package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"
)

// Mode selects the backend flavor. It is evaluated once when the gateway is
// constructed and is immutable for the gateway's lifetime.
type Mode string

const (
	// ModeManaged targets the managed serverless Postgres backend via pgx.
	ModeManaged Mode = "managed"
	// ModeDev targets an in-process SQLite database file.
	ModeDev Mode = "dev"
	// ModeTest targets a private in-memory SQLite database.
	ModeTest Mode = "test"
)

// Statement pairs SQL text with its ordered parameter list, for Batch.
type Statement struct {
	SQL  string
	Args []any
}

// RunResult reports the outcome of Run.
type RunResult struct {
	Success      bool
	Changes      int64
	LastInsertID *int64
}

// Transaction-capability shapes, probed once for Batch. When neither is
// present Batch degrades to sequential best-effort execution.
type sqlTxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type pgxTxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Gateway owns the single backend handle for the process lifetime and routes
// every read and write in the system. Callers never touch the raw driver.
type Gateway struct {
	mode    Mode
	handle  any
	adapter *StatementAdapter

	mu       sync.Mutex
	migrated bool
}

// Open constructs a gateway for the given mode. For ModeManaged dsn is the
// Postgres connection string; for ModeDev it is the database file path;
// ModeTest ignores it and creates a private in-memory database.
func Open(ctx context.Context, mode Mode, dsn string) (*Gateway, error) {
	var handle any

	switch mode {
	case ModeManaged:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open managed backend: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping managed backend: %w", err)
		}
		handle = pool

	case ModeDev:
		sqlDB, err := sql.Open("sqlite3", "file:"+dsn+"?_fk=1")
		if err != nil {
			return nil, fmt.Errorf("open dev backend: %w", err)
		}
		handle = sqlDB

	case ModeTest:
		// A uniquely named shared-cache memory database: isolated per
		// gateway, but visible to every connection in the pool.
		name := uuid.NewString()
		sqlDB, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared&_fk=1")
		if err != nil {
			return nil, fmt.Errorf("open test backend: %w", err)
		}
		// Keep one connection open so the memory database survives.
		sqlDB.SetMaxOpenConns(1)
		handle = sqlDB

	default:
		return nil, fmt.Errorf("unknown deployment mode %q", mode)
	}

	gw, err := NewWithHandle(mode, handle)
	if err != nil {
		closeHandle(handle)
		return nil, err
	}
	return gw, nil
}

// NewWithHandle wraps an already-opened raw handle. Used by Open and by test
// harnesses that need a specific statement shape.
func NewWithHandle(mode Mode, handle any) (*Gateway, error) {
	adapter, err := NewStatementAdapter(handle)
	if err != nil {
		return nil, err
	}
	return &Gateway{mode: mode, handle: handle, adapter: adapter}, nil
}

// Mode returns the deployment mode the gateway was constructed with.
func (g *Gateway) Mode() Mode {
	return g.mode
}

// Close releases the underlying handle.
func (g *Gateway) Close() error {
	return closeHandle(g.handle)
}

func closeHandle(handle any) error {
	switch c := handle.(type) {
	case interface{ Close() error }:
		return c.Close()
	case interface{ Close() }:
		c.Close()
		return nil
	}
	return nil
}

// All returns every row matching the query.
func (g *Gateway) All(ctx context.Context, query string, args ...any) ([]Row, error) {
	if err := g.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return g.adapter.QueryAll(ctx, query, args...)
}

// First returns the first matching row, or ok=false when none matched.
// Zero rows is never an error.
func (g *Gateway) First(ctx context.Context, query string, args ...any) (Row, bool, error) {
	if err := g.ensureSchema(ctx); err != nil {
		return nil, false, err
	}
	return g.adapter.QueryOne(ctx, query, args...)
}

// Run executes a single write statement.
func (g *Gateway) Run(ctx context.Context, query string, args ...any) (RunResult, error) {
	if err := g.ensureSchema(ctx); err != nil {
		return RunResult{}, err
	}
	res, err := g.adapter.Execute(ctx, query, args...)
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Success: true, Changes: res.Changes, LastInsertID: res.LastInsertID}, nil
}

// Batch executes the statements in order. When the handle can begin a
// transaction the batch is atomic; otherwise statements run sequentially and
// a mid-batch failure leaves earlier statements applied. Callers get
// all-or-nothing semantics only on transaction-capable backends.
func (g *Gateway) Batch(ctx context.Context, stmts []Statement) ([]RunResult, error) {
	if err := g.ensureSchema(ctx); err != nil {
		return nil, err
	}

	switch h := g.handle.(type) {
	case sqlTxBeginner:
		tx, err := h.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin batch: %w", err)
		}
		results, err := runStatements(ctx, mustAdapter(tx), stmts)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		return results, nil

	case pgxTxBeginner:
		tx, err := h.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin batch: %w", err)
		}
		results, err := runStatements(ctx, mustAdapter(tx), stmts)
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		return results, nil

	default:
		// Best-effort fallback: not atomic, no compensating rollback.
		log.Warn().Msg("backend has no transaction support, batch runs sequentially")
		return runStatements(ctx, g.adapter, stmts)
	}
}

func runStatements(ctx context.Context, a *StatementAdapter, stmts []Statement) ([]RunResult, error) {
	results := make([]RunResult, 0, len(stmts))
	for _, s := range stmts {
		res, err := a.Execute(ctx, s.SQL, s.Args...)
		if err != nil {
			return results, err
		}
		results = append(results, RunResult{Success: true, Changes: res.Changes, LastInsertID: res.LastInsertID})
	}
	return results, nil
}

// mustAdapter wraps a transaction handle. Both *sql.Tx and pgx.Tx satisfy a
// probed shape, so construction cannot fail.
func mustAdapter(handle any) *StatementAdapter {
	a, err := NewStatementAdapter(handle)
	if err != nil {
		panic(err)
	}
	return a
}

// GenerateID returns a new opaque row id.
func (g *Gateway) GenerateID() string {
	return uuid.NewString()
}

// Now returns the gateway's notion of the current time. See NowUTC.
func (g *Gateway) Now() time.Time {
	return NowUTC()
}

// NowUTC returns the current time in UTC truncated to whole seconds, which
// keeps stored timestamps comparable across both backends.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
