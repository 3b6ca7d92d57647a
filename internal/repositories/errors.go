package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a write violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key")
)

// pgUniqueViolation is the SQLSTATE postgres reports for unique index violations.
const pgUniqueViolation = "23505"

// DuplicateKeyError carries whatever detail the store gave about the
// violated constraint. It matches ErrDuplicateKey with errors.Is.
type DuplicateKeyError struct {
	Detail string
	Err    error
}

func (e *DuplicateKeyError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("duplicate key: %s", e.Detail)
	}
	return "duplicate key"
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// translate maps store-specific faults onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateKeyError{Detail: pgErr.Detail, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateKeyError{Err: err}
	}
	return err
}
