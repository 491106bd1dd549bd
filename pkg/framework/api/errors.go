package api

import (
	"errors"
	"net/http"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
)

func httpStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalid), errors.Is(err, apperrors.ErrInvalidYAML),
		errors.Is(err, apperrors.ErrInvalidRequest), errors.Is(err, apperrors.ErrInvalidStoreURL):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, apperrors.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrEventStore):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func extractErrorCode(err error) string {
	if err == nil {
		return "unknown_error"
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, apperrors.ErrInvalidStoreURL):
		return "invalid_store_url"
	case errors.Is(err, apperrors.ErrInvalidYAML):
		return "invalid_yaml"
	case errors.Is(err, apperrors.ErrInvalid):
		return "validation_error"
	case errors.Is(err, apperrors.ErrTimeout):
		return "timeout"
	case errors.Is(err, apperrors.ErrFetch):
		return "fetch_error"
	case errors.Is(err, apperrors.ErrEventStore):
		return "event_store_unavailable"
	case errors.Is(err, apperrors.ErrStorage):
		return "storage_error"
	}

	return "internal_error"
}
