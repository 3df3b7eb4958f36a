package repository

import (
	"gorm.io/gorm"
)

type CounterRepository interface {
	// NextTx atomically increments the named counter inside the caller's
	// transaction and returns the new value. The upsert-returning statement
	// is the store's read-modify-write primitive — concurrent callers each
	// get a distinct value.
	NextTx(tx *gorm.DB, name string) (int64, error)
}

type counterRepo struct{ db *gorm.DB }

func NewCounterRepository(db *gorm.DB) CounterRepository { return &counterRepo{db: db} }

func (r *counterRepo) NextTx(tx *gorm.DB, name string) (int64, error) {
	var value int64
	err := tx.Raw(`
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`, name).Scan(&value).Error
	return value, err
}
