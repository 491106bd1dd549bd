package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/garunski/extension-conductor/pkg/framework/validation"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func WriteJSONResponse(w http.ResponseWriter, logger logr.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error(err, "failed to encode JSON response")
	}
}

func WriteErrorResponse(w http.ResponseWriter, logger logr.Logger, status int, errorMsg string, message string, details map[string]string) {
	resp := ErrorResponse{
		Error:   errorMsg,
		Message: message,
		Details: details,
	}
	WriteJSONResponse(w, logger, status, resp)
}

func WriteError(w http.ResponseWriter, logger logr.Logger, err error) {
	if err == nil {
		WriteErrorResponse(w, logger, http.StatusInternalServerError, "unknown_error", "An unknown error occurred", nil)
		return
	}

	WriteErrorResponse(w, logger, httpStatus(err), extractErrorCode(err), err.Error(), nil)
}

// WriteResultResponse writes a validation result with the status its error
// maps to. A successful result is 200 with an empty body object.
func WriteResultResponse(w http.ResponseWriter, logger logr.Logger, result validation.Result) {
	status := http.StatusOK
	if err := result.Err(); err != nil {
		status = httpStatus(err)
		logger.V(1).Info("validation rejected", "status", status, "error", err.Error())
	}
	WriteJSONResponse(w, logger, status, result)
}

func WriteYAMLResponse(w http.ResponseWriter, logger logr.Logger, data []byte) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error(err, "failed to write YAML response")
	}
}
