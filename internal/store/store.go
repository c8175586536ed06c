// Package store persists users and their link profiles in Postgres.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict is returned when a unique constraint (email or username) is violated.
var ErrConflict = errors.New("store: unique constraint violated")

// ErrNotFound is returned by writes that target a row that does not exist.
var ErrNotFound = errors.New("store: not found")

// DB is the subset of pgxpool.Pool used by the repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ConflictError carries the name of the violated constraint.
type ConflictError struct {
	Constraint string
}

func (e *ConflictError) Error() string {
	return "store: unique constraint violated: " + e.Constraint
}

// Is makes errors.Is(err, ErrConflict) hold for any ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &ConflictError{Constraint: pgErr.ConstraintName}
	}
	return err
}
