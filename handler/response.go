package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"folio-api/internal/usecase"
)

// envelope is the body of every response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

var (
	statusByCode = map[usecase.ErrorCode]int{
		usecase.ErrorInvalidInput:     http.StatusBadRequest,
		usecase.ErrorValidation:       http.StatusBadRequest,
		usecase.ErrorUnauthorized:     http.StatusUnauthorized,
		usecase.ErrorForbidden:        http.StatusForbidden,
		usecase.ErrorNotFound:         http.StatusNotFound,
		usecase.ErrorMethodNotAllowed: http.StatusMethodNotAllowed,
		usecase.ErrorConflict:         http.StatusConflict,
		usecase.ErrorPayloadTooLarge:  http.StatusRequestEntityTooLarge,
		usecase.ErrorPartialWrite:     http.StatusInternalServerError,
		usecase.ErrorInternal:         http.StatusInternalServerError,
	}
	messageByCode = map[usecase.ErrorCode]string{
		usecase.ErrorInvalidInput:     "Invalid request body",
		usecase.ErrorValidation:       "Validation failed",
		usecase.ErrorUnauthorized:     "Authentication required",
		usecase.ErrorForbidden:        "Admin access required",
		usecase.ErrorNotFound:         "Not found",
		usecase.ErrorMethodNotAllowed: "Method not allowed",
		usecase.ErrorConflict:         "Content already exists",
		usecase.ErrorPayloadTooLarge:  "Request body too large",
		usecase.ErrorPartialWrite:     "Content was saved but the section index could not be updated",
		usecase.ErrorInternal:         "Internal server error",
	}
)

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError maps err to a status and envelope. Unclassified errors and
// internal failures are logged and returned without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var ue *usecase.Error
	if !errors.As(err, &ue) {
		ue = &usecase.Error{Code: usecase.ErrorInternal, Reason: "unexpected_error", Err: err}
	}
	status, ok := statusByCode[ue.Code]
	if !ok {
		status = http.StatusInternalServerError
		ue = &usecase.Error{Code: usecase.ErrorInternal, Reason: "unknown_code", Err: err}
	}

	message := messageByCode[ue.Code]
	if ue.Reason == "unsupported_schema_version" {
		message = "Content was written by a newer schema version"
	}

	body := envelope{Error: message, Code: string(ue.Code)}
	if ue.Code != usecase.ErrorInternal {
		body.Details = ue.Details
	}

	fields := []zap.Field{
		zap.String("code", string(ue.Code)),
		zap.String("reason", ue.Reason),
		zap.String("correlationId", correlationIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
	}
	if ue.Err != nil {
		fields = append(fields, zap.Error(ue.Err))
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Info("request rejected", fields...)
	}
	writeJSON(w, status, body)
}
