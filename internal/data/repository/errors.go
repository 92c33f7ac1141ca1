package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	postgresUniqueViolationCode     = "23505"
	postgresForeignKeyViolationCode = "23503"
	postgresCheckViolationCode      = "23514"
	postgresNumericOverflowCode     = "22003"
)

var (
	// ErrNotFound is returned by mutations that matched no row.
	ErrNotFound = errors.New("record not found")

	// ErrUniqueViolation wraps a unique index rejection from the store.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrConstraintViolation wraps check, foreign key and numeric overflow
	// rejections.
	ErrConstraintViolation = errors.New("constraint violation")
)

// translateError maps postgres constraint failures onto the package
// sentinels, keeping the constraint name in the message.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case postgresUniqueViolationCode:
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
	case postgresForeignKeyViolationCode, postgresCheckViolationCode:
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.ConstraintName)
	case postgresNumericOverflowCode:
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.Message)
	default:
		return err
	}
}
