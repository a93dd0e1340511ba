// Package models defines the data structures that map to database tables.
// GORM uses these structs to generate SQL and to scan rows back into Go values;
// the struct tags tell it which column each field lives in and how it may be written.
//
// The service owns a single record type, Status, which describes the state of a task
// that lives in another service. The task itself is never stored here, only its
// integer identifier.
package models

import "time"

// Status is one row of the statuses table.
//
// CreatedAt and UpdatedAt carry the "->" permission tag, which makes them read-only
// for GORM: inserts leave them out so the database defaults (CURRENT_TIMESTAMP) and
// the update trigger own them. They are pointers because the columns are nullable.
type Status struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement"`
	TaskID    int64      `gorm:"column:task_id;not null"`
	Status    string     `gorm:"column:status;size:50;not null"`
	CreatedAt *time.Time `gorm:"column:created_at;->"`
	UpdatedAt *time.Time `gorm:"column:updated_at;->"`
}

// TableName overrides GORM's default pluralised name ("statuses" happens to match,
// but pinning it keeps the mapping explicit for the hand-written migrations).
func (Status) TableName() string {
	return "statuses"
}
