package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
	"github.com/garunski/extension-conductor/pkg/framework/events"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/store"
	"github.com/garunski/extension-conductor/pkg/framework/validation"
)

// DefaultValidateWait caps how long a validate request waits for its
// completion. The validator's own timeout is normally far shorter.
const DefaultValidateWait = 30 * time.Second

type Handler struct {
	logger       logr.Logger
	appName      string
	version      string
	store        store.ExtensionStore
	validator    *validation.Validator
	eventStore   events.EventStorage
	ids          extensions.IDGenerator
	validateWait time.Duration
}

func NewHandler(st store.ExtensionStore, validator *validation.Validator, eventStore events.EventStorage, ids extensions.IDGenerator, logger logr.Logger, appName, version string) (*Handler, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: extension store is required", apperrors.ErrInvalid)
	}
	if ids == nil {
		return nil, fmt.Errorf("%w: id generator is required", apperrors.ErrInvalid)
	}

	if appName == "" {
		appName = "Extensions"
	}

	return &Handler{
		logger:       logger,
		appName:      appName,
		version:      version,
		store:        st,
		validator:    validator,
		eventStore:   eventStore,
		ids:          ids,
		validateWait: DefaultValidateWait,
	}, nil
}

func (h *Handler) parseJSONRequest(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("%w: invalid request body: JSON syntax error at position %d: %w", apperrors.ErrInvalidRequest, syntaxErr.Offset, syntaxErr)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: invalid request body: JSON type error for field %s: expected %s, got %s", apperrors.ErrInvalidRequest, typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return fmt.Errorf("%w: invalid request body: %w", apperrors.ErrInvalidRequest, err)
	}
	return nil
}
