package adaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ticket-sales/internal/dto/request"
	"ticket-sales/internal/usecase"
	"ticket-sales/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultPageSize = 10

// clientErrors are business failures reported as 400 with their message.
var clientErrors = []error{
	usecase.ErrNotFound,
	usecase.ErrAlreadyUsed,
	usecase.ErrInactive,
	usecase.ErrInvalidQuantity,
	usecase.ErrInvalidPagination,
	usecase.ErrExhaustedRetries,
	usecase.ErrBatchCreateFailed,
	usecase.ErrConstraintViolation,
	usecase.ErrValidation,
}

// writeServiceError maps service errors onto the HTTP surface: duplicate codes
// conflict, every other business failure (not found included) is a bad
// request, anything else is an internal error.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	if errors.Is(err, usecase.ErrDuplicateCode) {
		log.Warn(operation+" failed - conflict",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, err.Error())
		return
	}

	for _, target := range clientErrors {
		if errors.Is(err, target) {
			log.Warn(operation+" rejected",
				zap.Error(err),
				zap.String("operation", operation))
			utils.ResponseBadRequest(w, err.Error(), nil)
			return
		}
	}

	log.Error("Failed to "+operation,
		zap.Error(err),
		zap.String("operation", operation))
	utils.ResponseInternalError(w, "Internal server error")
}

// decodeBody decodes and validates a JSON body, writing the 400 itself when
// either step fails.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// pageRequest reads ?page (zero-based) and ?size. Unparseable values are
// reported as invalid pagination rather than replaced by defaults.
func pageRequest(r *http.Request) (request.PaginatedRequest, error) {
	query := r.URL.Query()
	req := request.PaginatedRequest{Page: 0, Size: defaultPageSize}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: page %q", usecase.ErrInvalidPagination, raw)
		}
		req.Page = page
	}

	if raw := query.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: size %q", usecase.ErrInvalidPagination, raw)
		}
		req.Size = size
	}

	return req, nil
}
