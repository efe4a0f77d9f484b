package repository

import (
	"errors"

	"clothingstore/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes surfaced to callers
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgNumericOutOfRange    = "22003"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// TranslateError maps storage errors to application errors. notFoundMsg is
// used for gorm.ErrRecordNotFound; errors that already are *apperror.Error pass through.
func TranslateError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if notFoundMsg == "" {
			notFoundMsg = "record not found"
		}
		return apperror.NotFound("%s", notFoundMsg)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("resource already exists", err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperror.IntegrityViolation("referenced resource is missing or still in use", err)
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return apperror.InvalidInput("value violates a data constraint")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.Conflict("resource already exists", err)
		case pgForeignKeyViolation:
			return apperror.IntegrityViolation("referenced resource is missing or still in use", err)
		case pgCheckViolation:
			return apperror.InvalidInput("value violates a data constraint")
		case pgNumericOutOfRange:
			return apperror.InvalidInput("value is out of range")
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return apperror.Conflict("concurrent update, please retry", err)
		}
	}

	return apperror.Internal("database operation failed", err)
}
