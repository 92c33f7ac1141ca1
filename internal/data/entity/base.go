package entity

import "time"

// Base carries the lifecycle columns shared by every table.
type Base struct {
	IsActive  bool      `db:"is_active"`
	Deleted   bool      `db:"deleted"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
