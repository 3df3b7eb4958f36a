// Package repository contains the GORM persistence layer. Concurrency safety
// relies on the store's primitives — date-keyed inserts with ON CONFLICT DO
// NOTHING, status-guarded conditional updates, row locks, and an atomic
// upsert-returning counter — never on in-process locks.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound replaces gorm.ErrRecordNotFound at the repository boundary.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a create-if-absent insert found an
	// existing row (the losing side of a concurrent double-open).
	ErrDuplicate = errors.New("record already exists")
	// ErrStale is returned when a status-guarded conditional update matched
	// no rows: the record changed state under the caller.
	ErrStale = errors.New("record state changed concurrently")
)

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
