package validation

import (
	"fmt"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
)

const (
	MsgInvalidStoreURL = "Not a valid store URL."
	MsgTimeout         = "Connection timed out, please try again later."

	unhandledPrefix = "Unhandled error while validating URL: "
	addFailedPrefix = "Failed to add extension: "
)

// Result is the outcome of a request-add. The zero value means success.
// StoreURL holds an error for the store URL form field, General one for a
// banner.
type Result struct {
	StoreURL string `json:"storeUrl,omitempty"`
	General  string `json:"_error,omitempty"`
}

func (r Result) OK() bool {
	return r.StoreURL == "" && r.General == ""
}

// Field reports whether r is a field-level error.
func (r Result) Field() bool {
	return r.StoreURL != ""
}

func (r Result) Error() string {
	if r.StoreURL != "" {
		return "storeUrl: " + r.StoreURL
	}
	return r.General
}

// Err converts r into an error carrying the matching sentinel, nil on
// success.
func (r Result) Err() error {
	switch {
	case r.OK():
		return nil
	case r.Field():
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidStoreURL, r.StoreURL)
	case r.General == MsgTimeout:
		return fmt.Errorf("%w: %s", apperrors.ErrTimeout, r.General)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrFetch, r.General)
	}
}

func invalidStoreURL() Result {
	return Result{StoreURL: MsgInvalidStoreURL}
}

func invalidStatus(status int) Result {
	return Result{StoreURL: fmt.Sprintf("Invalid status of \"%d\" at URL.", status)}
}

func timedOut() Result {
	return Result{General: MsgTimeout}
}

func unhandled(err error) Result {
	return Result{General: unhandledPrefix + err.Error()}
}
