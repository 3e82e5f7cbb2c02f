package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// uniqueViolation is the SQLSTATE Postgres reports for unique constraint hits.
	uniqueViolation = "23505"
	// invalidTextRepresentation is reported for literals that do not parse
	// as the column type, e.g. a malformed uuid.
	invalidTextRepresentation = "22P02"
)

// IsUniqueViolation reports whether err carries a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// IsInvalidText reports whether err carries a Postgres
// invalid_text_representation.
func IsInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}
