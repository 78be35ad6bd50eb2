package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ErrBackendUnsupported is returned when the raw handle exposes none of the
// known statement-execution shapes. This is a configuration error, not
// retryable.
var ErrBackendUnsupported = errors.New("database backend exposes no supported statement shape")

// QueryError wraps a backend-reported execution failure with the literal SQL
// text and parameter list that produced it. The backend's message is
// preserved verbatim so callers can pattern-match on it.
type QueryError struct {
	SQL  string
	Args []any
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v (sql: %s)", e.Err, e.SQL)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsUniqueViolation reports whether err stems from a unique-constraint
// violation on any of the supported backends.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	// Raw-shape handles may surface only the message text.
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
