package api

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
	"unicode"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
	"github.com/garunski/extension-conductor/pkg/framework/events"
)

func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", apperrors.ErrInvalid)
	}
	if len(id) > 256 {
		return fmt.Errorf("%w: id must be 256 characters or less", apperrors.ErrInvalid)
	}
	for _, r := range id {
		if unicode.IsControl(r) || r == '/' {
			return fmt.Errorf("%w: id contains invalid character %q", apperrors.ErrInvalid, r)
		}
	}
	return nil
}

func ParseEventQueryParams(queryParams url.Values) (events.EventFilters, error) {
	filters := events.EventFilters{}

	if resource := queryParams.Get("resource"); resource != "" {
		if len(resource) > 2048 {
			return filters, fmt.Errorf("%w: resource must be 2048 characters or less", apperrors.ErrInvalid)
		}
		filters.ResourceKey = resource
	}

	if typeStr := queryParams.Get("type"); typeStr != "" {
		eventType := events.EventType(typeStr)
		if !eventType.Valid() {
			return filters, fmt.Errorf("%w: invalid event type: %s (must be one of: error, success, info, warning)", apperrors.ErrInvalid, typeStr)
		}
		filters.Type = eventType
	}

	if sinceStr := queryParams.Get("since"); sinceStr != "" {
		t, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return filters, fmt.Errorf("%w: invalid since parameter format (use RFC3339): %w", apperrors.ErrInvalid, err)
		}
		filters.Since = t
	}

	if untilStr := queryParams.Get("until"); untilStr != "" {
		t, err := time.Parse(time.RFC3339, untilStr)
		if err != nil {
			return filters, fmt.Errorf("%w: invalid until parameter format (use RFC3339): %w", apperrors.ErrInvalid, err)
		}
		filters.Until = t
	}

	limit, err := parseLimit(queryParams.Get("limit"))
	if err != nil {
		return filters, err
	}
	filters.Limit = limit

	if offsetStr := queryParams.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return filters, fmt.Errorf("%w: invalid offset parameter: must be a non-negative integer", apperrors.ErrInvalid)
		}
		filters.Offset = offset
	}

	return filters, nil
}

func parseLimit(limitStr string) (int, error) {
	if limitStr == "" {
		return events.DefaultLimit, nil
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("%w: invalid limit parameter: must be a positive integer", apperrors.ErrInvalid)
	}
	if limit > 1000 {
		return 0, fmt.Errorf("%w: limit cannot exceed 1000", apperrors.ErrInvalid)
	}
	return limit, nil
}
