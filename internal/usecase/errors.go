package usecase

import "errors"

// Domain errors. Services wrap them with context; callers match with
// errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyUsed         = errors.New("ticket has already been used")
	ErrInactive            = errors.New("ticket is not active")
	ErrDuplicateCode       = errors.New("code is already in use")
	ErrInvalidQuantity     = errors.New("quantity must be between 1 and 1000")
	ErrInvalidPagination   = errors.New("invalid pagination parameters")
	ErrExhaustedRetries    = errors.New("unable to generate unique code after maximum attempts")
	ErrBatchCreateFailed   = errors.New("batch ticket creation failed")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrValidation          = errors.New("validation failed")
)
