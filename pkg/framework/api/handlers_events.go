package api

import (
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
)

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h.eventStore == nil {
		WriteError(w, h.logger, fmt.Errorf("%w: event store not available", apperrors.ErrEventStore))
		return
	}

	filters, err := ParseEventQueryParams(r.URL.Query())
	if err != nil {
		WriteError(w, h.logger, fmt.Errorf("invalid query parameters: %w", err))
		return
	}

	eventList, err := h.eventStore.ListEvents(filters)
	if err != nil {
		h.logger.Error(err, "failed to list events")
		WriteError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, eventList)
}

func (h *Handler) GetRecentErrors(w http.ResponseWriter, r *http.Request) {
	if h.eventStore == nil {
		WriteError(w, h.logger, fmt.Errorf("%w: event store not available", apperrors.ErrEventStore))
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	eventList, err := h.eventStore.GetRecentErrors(limit)
	if err != nil {
		h.logger.Error(err, "failed to get recent errors")
		WriteError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, eventList)
}

// CleanupEvents removes events older than ?before= (RFC3339), or older than
// ?olderThan= (a duration such as 72h).
func (h *Handler) CleanupEvents(w http.ResponseWriter, r *http.Request) {
	if h.eventStore == nil {
		WriteError(w, h.logger, fmt.Errorf("%w: event store not available", apperrors.ErrEventStore))
		return
	}

	var before time.Time
	q := r.URL.Query()
	switch {
	case q.Get("before") != "":
		t, err := time.Parse(time.RFC3339, q.Get("before"))
		if err != nil {
			WriteError(w, h.logger, fmt.Errorf("%w: invalid before parameter format (use RFC3339): %w", apperrors.ErrInvalid, err))
			return
		}
		before = t
	case q.Get("olderThan") != "":
		d, err := time.ParseDuration(q.Get("olderThan"))
		if err != nil || d <= 0 {
			WriteError(w, h.logger, fmt.Errorf("%w: olderThan must be a positive duration", apperrors.ErrInvalid))
			return
		}
		before = time.Now().Add(-d)
	default:
		WriteError(w, h.logger, fmt.Errorf("%w: one of before or olderThan is required", apperrors.ErrInvalidRequest))
		return
	}

	deleted, err := h.eventStore.CleanupOldEvents(before)
	if err != nil {
		h.logger.Error(err, "failed to cleanup events")
		WriteError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, CleanupResponse{Deleted: deleted, Before: before})
}
