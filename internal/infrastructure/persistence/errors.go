package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the import writers distinguish.
const (
	sqlStateUndefinedFunction = "42883"
	sqlStateInvalidSchemaName = "3F000"
	sqlStateUndefinedTable    = "42P01"
	sqlStateUniqueViolation   = "23505"
)

// sqlState returns the SQLSTATE of a Postgres error anywhere in err's chain.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isInfrastructureMissing reports errors meaning the server import path does
// not exist at all, as opposed to existing and refusing the write.
func isInfrastructureMissing(err error) bool {
	switch sqlState(err) {
	case sqlStateUndefinedFunction, sqlStateInvalidSchemaName, sqlStateUndefinedTable:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || sqlState(err) == sqlStateUniqueViolation
}
