package model

// Counter is a named monotonic counter (invoice numbering). Increments go
// through an atomic upsert-returning statement inside the caller's
// transaction — never read-then-write.
type Counter struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

func (Counter) TableName() string { return "counters" }
