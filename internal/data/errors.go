package data

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrRecordNotFound is returned when a single-row query finds no match.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateRecord is returned when a write violates a unique constraint.
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrInvalidData is returned when the database rejects a value, for
	// example a name longer than the column allows.
	ErrInvalidData = errors.New("invalid data")
)

// translateError maps driver errors onto the closed set above. Errors it
// does not recognise are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch {
	case pqErr.Code == "23505": // unique_violation
		return errors.Join(ErrDuplicateRecord, err)
	case pqErr.Code == "23502", pqErr.Code == "23514": // not_null_violation, check_violation
		return errors.Join(ErrInvalidData, err)
	case pqErr.Code.Class() == "22": // data_exception
		return errors.Join(ErrInvalidData, err)
	default:
		return err
	}
}
