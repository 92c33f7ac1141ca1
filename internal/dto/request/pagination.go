package request

import "ticket-sales/pkg/utils"

// PaginatedRequest addresses a page by zero-based index.
type PaginatedRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

const MaxPageSize = 100

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, p.Limit())
}

func (p PaginatedRequest) Limit() int {
	if p.Size > MaxPageSize {
		return MaxPageSize
	}
	return p.Size
}
