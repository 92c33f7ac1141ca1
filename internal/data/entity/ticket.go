package entity

import "time"

type Ticket struct {
	ID              int64      `db:"ticket_id"`
	EventLocationID int64      `db:"event_location_id"`
	Code            string     `db:"code"`
	IsUsed          bool       `db:"is_used"`
	UsedAt          *time.Time `db:"used_at"`
	Base
}

// TicketFilter narrows ticket listings. Nil fields are not applied; deleted
// rows are always excluded.
type TicketFilter struct {
	EventLocationID *int64
	IsUsed          *bool
	IsActive        *bool
}

// TicketPatch holds the fields of a partial ticket update.
type TicketPatch struct {
	EventLocationID *int64
	Code            *string
	IsActive        *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TicketPatch) IsEmpty() bool {
	return p.EventLocationID == nil && p.Code == nil && p.IsActive == nil
}
