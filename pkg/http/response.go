package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders an AppError with its own status and code. Any other
// error is reported as an opaque internal error.
func WriteError(w http.ResponseWriter, err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  apperrors.CodeInternal,
		})
	}

	status := appErr.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	resp := ErrorResponse{Error: appErr.Message, Code: appErr.Code, Details: appErr.Details}
	if status >= http.StatusInternalServerError && appErr.Code == apperrors.CodeInternal {
		resp.Details = nil
	}
	return WriteJSON(w, status, resp)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
