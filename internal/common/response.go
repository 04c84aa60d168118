package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// Envelope is the canonical JSON body returned by every endpoint. Code mirrors
// the HTTP status so clients can rely on either.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK renders a successful envelope.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Code: status, Message: message, Data: data})
}

// JSONError renders an error envelope with the provided status.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Code: status, Message: message})
}

// WriteError maps err onto an envelope. AppErrors keep their status and
// message; anything else is logged and reported as a generic internal error.
func WriteError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(appErr.Err).Str("code", appErr.Code).Msg(appErr.Message)
		}
		JSON(w, status, Envelope{Code: status, Message: appErr.Message, Data: appErr.Details})
		return
	}
	logger.Error().Err(err).Msg("unhandled error")
	JSONError(w, http.StatusInternalServerError, MsgInternal)
}
