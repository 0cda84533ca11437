package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// Compile-time interface check.
var _ types.Records = (*records)(nil)

// records implements types.Records over a database handle or an open
// transaction. Queries are written with `?` placeholders and rebound for
// the driver before they run.
type records struct {
	q sqlx.ExtContext

	// lockRows appends FOR UPDATE to point reads of chats and folders.
	lockRows bool
}

func (r *records) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, r.q, dest, r.q.Rebind(query), args...)
}

func (r *records) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, r.q, dest, r.q.Rebind(query), args...)
}

func (r *records) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.q.ExecContext(ctx, r.q.Rebind(query), args...)
}

// execOne runs a statement that must touch an existing row and reports
// ErrNotFound when it touched none. Other errors are wrapped with what.
func (r *records) execOne(ctx context.Context, what string, query string, args ...any) error {
	res, err := r.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// forUpdate returns the row-locking suffix for point reads.
func (r *records) forUpdate() string {
	if r.lockRows {
		return " FOR UPDATE"
	}
	return ""
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps anything else.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
