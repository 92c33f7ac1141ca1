package request

type CreateTicketRequest struct {
	EventLocationID int64 `json:"event_location_id" validate:"required,gt=0"`
}

// GenerateTicketsRequest asks for a batch; the quantity bounds are enforced by
// the ticket service.
type GenerateTicketsRequest struct {
	EventLocationID int64 `json:"event_location_id" validate:"required,gt=0"`
	Quantity        int   `json:"quantity"`
}

type UpdateTicketRequest struct {
	EventLocationID *int64  `json:"event_location_id,omitempty" validate:"omitempty,gt=0"`
	Code            *string `json:"code,omitempty" validate:"omitempty,ticketcode"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

type UseTicketRequest struct {
	Code string `json:"code" validate:"required"`
}
