package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
)

func (h *Handler) ListExtensions(w http.ResponseWriter, r *http.Request) {
	state := h.store.State()

	if r.URL.Query().Get("format") == "yaml" {
		data, err := extensions.MarshalEntriesYAML(state)
		if err != nil {
			WriteError(w, h.logger, err)
			return
		}
		WriteYAMLResponse(w, h.logger, data)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, ExtensionListResponse{
		Extensions: state,
		Count:      len(state),
	})
}

func (h *Handler) GetExtension(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := ValidateID(id); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	entry, ok := h.store.Get(id)
	if !ok {
		WriteError(w, h.logger, fmt.Errorf("%w: extension %s", apperrors.ErrNotFound, id))
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, entry)
}

func (h *Handler) AddExtension(w http.ResponseWriter, r *http.Request) {
	var entry extensions.Entry
	if err := h.parseJSONRequest(r, &entry); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if entry.ID == "" {
		entry.ID = h.ids.Next()
	}
	if err := ValidateID(entry.ID); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if err := entry.Validate(); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if _, err := h.store.Dispatch(extensions.Add(entry)); err != nil {
		h.logger.Error(err, "failed to add extension", "id", entry.ID)
		WriteError(w, h.logger, fmt.Errorf("add failed: %w", err))
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusCreated, entry)
}

func (h *Handler) UpdateExtension(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := ValidateID(id); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	var patch extensions.Patch
	if err := h.parseJSONRequest(r, &patch); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if err := patch.Validate(); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if patch.ID != nil {
		if err := ValidateID(*patch.ID); err != nil {
			WriteError(w, h.logger, err)
			return
		}
	}

	if _, ok := h.store.Get(id); !ok {
		WriteError(w, h.logger, fmt.Errorf("%w: extension %s", apperrors.ErrNotFound, id))
		return
	}

	state, err := h.store.Dispatch(extensions.Update(id, patch))
	if err != nil {
		h.logger.Error(err, "failed to update extension", "id", id)
		WriteError(w, h.logger, fmt.Errorf("update failed: %w", err))
		return
	}

	target := id
	if patch.ID != nil {
		target = *patch.ID
	}
	WriteJSONResponse(w, h.logger, http.StatusOK, state[target])
}

func (h *Handler) DeleteExtension(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := ValidateID(id); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	h.deleteIDs(w, []string{id})
}

func (h *Handler) DeleteExtensions(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := h.parseJSONRequest(r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if len(req.IDs) == 0 {
		WriteError(w, h.logger, fmt.Errorf("%w: ids cannot be empty", apperrors.ErrInvalidRequest))
		return
	}
	for _, id := range req.IDs {
		if err := ValidateID(id); err != nil {
			WriteError(w, h.logger, err)
			return
		}
	}

	h.deleteIDs(w, req.IDs)
}

func (h *Handler) deleteIDs(w http.ResponseWriter, ids []string) {
	if _, err := h.store.Dispatch(extensions.Delete(ids...)); err != nil {
		h.logger.Error(err, "failed to delete extensions", "ids", ids)
		WriteError(w, h.logger, fmt.Errorf("delete failed: %w", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateExtension runs the request-add workflow and answers with its
// outcome: 200 and an empty object on success, otherwise the field or
// general error payload.
func (h *Handler) ValidateExtension(w http.ResponseWriter, r *http.Request) {
	if h.validator == nil {
		WriteError(w, h.logger, errors.New("validator not configured"))
		return
	}

	var req ValidateRequest
	if err := h.parseJSONRequest(r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.validateWait)
	defer cancel()

	result, err := h.validator.RequestAdd(ctx, req.StoreURL).Wait(ctx)
	if err != nil {
		WriteError(w, h.logger, fmt.Errorf("%w: waiting for validation: %w", apperrors.ErrTimeout, err))
		return
	}

	WriteResultResponse(w, h.logger, result)
}
