package usecase

import (
	"fmt"
	"math"

	"ticket-sales/internal/dto/request"
)

func validatePage(req request.PaginatedRequest) error {
	if req.Page < 0 || req.Size < 1 {
		return fmt.Errorf("%w: page=%d size=%d", ErrInvalidPagination, req.Page, req.Size)
	}
	// page*size must stay a valid OFFSET.
	if req.Page > math.MaxInt/req.Limit() {
		return fmt.Errorf("%w: page %d out of range", ErrInvalidPagination, req.Page)
	}
	return nil
}
