package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
)

// DecodeJSON reads a single JSON object into v. Unknown fields are refused
// so a misspelled field never silently becomes a zero value.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		var syntax *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is required")
		case errors.As(err, &maxBytes):
			return apperrors.New(apperrors.CodeBadRequest,
				fmt.Sprintf("Request body exceeds %d bytes", maxBytes.Limit), http.StatusRequestEntityTooLarge)
		case errors.As(err, &syntax):
			return apperrors.InvalidInput(fmt.Sprintf("Malformed JSON at offset %d", syntax.Offset))
		case errors.As(err, &typeErr):
			return apperrors.InvalidInput(fmt.Sprintf("Invalid value for field %q", typeErr.Field))
		default:
			return apperrors.InvalidInput("Invalid request body: " + err.Error())
		}
	}
	if dec.More() {
		return apperrors.InvalidInput("Request body must contain a single JSON object")
	}
	return nil
}
