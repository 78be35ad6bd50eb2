package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// ExecResult reports the outcome of a single write statement.
type ExecResult struct {
	Changes      int64
	LastInsertID *int64
}

// The three statement-execution shapes a raw handle may expose, in probe
// order. database/sql handles satisfy both statementPreparer and rawQuerier;
// probing for the prepare shape first keeps the richer path.

// statementPreparer is the prepare-then-run shape (database/sql and its
// transactions).
type statementPreparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// directQuerier is the direct-call-with-positional-args shape (pgx pools and
// transactions).
type directQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// rawQuerier is the last-resort shape: plain execution with no prepare step.
type rawQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type shape int

const (
	shapePrepared shape = iota + 1
	shapeDirect
	shapeRaw
)

// StatementAdapter normalizes the three backend shapes into QueryAll,
// QueryOne and Execute. The shape is resolved once at construction by
// checking which interfaces the handle satisfies; it is never re-probed and
// no execution error is ever swallowed during probing.
type StatementAdapter struct {
	kind   shape
	prep   statementPreparer
	direct directQuerier
	raw    rawQuerier
}

// NewStatementAdapter probes the handle for a usable statement shape.
// Returns ErrBackendUnsupported if none is found.
func NewStatementAdapter(handle any) (*StatementAdapter, error) {
	if p, ok := handle.(statementPreparer); ok {
		return &StatementAdapter{kind: shapePrepared, prep: p}, nil
	}
	if d, ok := handle.(directQuerier); ok {
		return &StatementAdapter{kind: shapeDirect, direct: d}, nil
	}
	if r, ok := handle.(rawQuerier); ok {
		return &StatementAdapter{kind: shapeRaw, raw: r}, nil
	}
	return nil, ErrBackendUnsupported
}

// QueryAll returns every matching row.
func (a *StatementAdapter) QueryAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	trace(query, args)

	switch a.kind {
	case shapePrepared:
		stmt, err := a.prep.PrepareContext(ctx, query)
		if err != nil {
			return nil, &QueryError{SQL: query, Args: args, Err: err}
		}
		defer stmt.Close()
		rows, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			return nil, &QueryError{SQL: query, Args: args, Err: err}
		}
		return collectSQLRows(rows, query, args)

	case shapeDirect:
		bound := rebind(query)
		rows, err := a.direct.Query(ctx, bound, args...)
		if err != nil {
			return nil, &QueryError{SQL: query, Args: args, Err: err}
		}
		return collectPgxRows(rows, query, args)

	default:
		rows, err := a.raw.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, &QueryError{SQL: query, Args: args, Err: err}
		}
		return collectSQLRows(rows, query, args)
	}
}

// QueryOne returns the first matching row. The second return value is false
// when no row matched; zero rows is not an error.
func (a *StatementAdapter) QueryOne(ctx context.Context, query string, args ...any) (Row, bool, error) {
	rows, err := a.QueryAll(ctx, query, args...)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// Execute runs a write statement and reports the affected-row count and,
// where the backend provides one, the generated row id.
func (a *StatementAdapter) Execute(ctx context.Context, query string, args ...any) (ExecResult, error) {
	trace(query, args)

	switch a.kind {
	case shapePrepared:
		stmt, err := a.prep.PrepareContext(ctx, query)
		if err != nil {
			return ExecResult{}, &QueryError{SQL: query, Args: args, Err: err}
		}
		defer stmt.Close()
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return ExecResult{}, &QueryError{SQL: query, Args: args, Err: err}
		}
		return execResultFromSQL(res), nil

	case shapeDirect:
		bound := rebind(query)
		tag, err := a.direct.Exec(ctx, bound, args...)
		if err != nil {
			return ExecResult{}, &QueryError{SQL: query, Args: args, Err: err}
		}
		return ExecResult{Changes: tag.RowsAffected()}, nil

	default:
		res, err := a.raw.ExecContext(ctx, query, args...)
		if err != nil {
			return ExecResult{}, &QueryError{SQL: query, Args: args, Err: err}
		}
		return execResultFromSQL(res), nil
	}
}

func execResultFromSQL(res sql.Result) ExecResult {
	out := ExecResult{}
	if n, err := res.RowsAffected(); err == nil {
		out.Changes = n
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		out.LastInsertID = &id
	}
	return out
}

func collectSQLRows(rows *sql.Rows, query string, args []any) ([]Row, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{SQL: query, Args: args, Err: err}
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{SQL: query, Args: args, Err: err}
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			r[c] = v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Args: args, Err: err}
	}
	return out, nil
}

func collectPgxRows(rows pgx.Rows, query string, args []any) ([]Row, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, &QueryError{SQL: query, Args: args, Err: err}
		}
		r := make(Row, len(fields))
		for i, f := range fields {
			r[f.Name] = vals[i]
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: query, Args: args, Err: err}
	}
	return out, nil
}

// rebind converts ? placeholders to the $n form pgx expects. Statements in
// this module never contain a literal question mark.
func rebind(query string) string {
	if !strings.ContainsRune(query, '?') {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func trace(query string, args []any) {
	log.Debug().Str("sql", query).Interface("params", args).Msg("executing statement")
}
