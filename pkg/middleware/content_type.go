package middleware

import (
	"mime"
	"net/http"

	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

// ContentTypeValidation requires a JSON content type on write requests that
// carry a body. Bodiless POSTs such as unassign or approve pass through.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasBody(r) {
				mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil || mediaType != "application/json" {
					log.Warn("Invalid Content-Type header",
						"request_id", RequestID(r.Context()),
						"content_type", r.Header.Get("Content-Type"),
						"path", r.URL.Path,
						"method", r.Method,
					)
					writeError(w, http.StatusUnsupportedMediaType, `{"error":"Content-Type must be application/json","code":"BAD_REQUEST"}`)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	default:
		return false
	}
}

// MaxRequestSize caps the body; decoding past the limit fails with
// http.MaxBytesError.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, http.StatusRequestEntityTooLarge, `{"error":"Request body too large","code":"BAD_REQUEST"}`)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
