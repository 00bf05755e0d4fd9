package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
)

func TestWriteError_UsesAppErrorStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, apperrors.RoomUnavailable("h1", "101", "reg-1")))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeRoomUnavailable, body.Code)
	assert.Equal(t, "reg-1", body.Details["occupied_by"])
}

func TestWriteError_PlainErrorIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, errors.New("mongo: connection pool exhausted")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		HotelID string `json:"hotel_id"`
	}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty", "", http.StatusBadRequest},
		{"malformed", `{"hotel_id":`, http.StatusBadRequest},
		{"unknown field", `{"hotel":"h1"}`, http.StatusBadRequest},
		{"wrong type", `{"hotel_id":7}`, http.StatusBadRequest},
		{"trailing object", `{"hotel_id":"h1"}{"hotel_id":"h2"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(r, &p)
			require.Error(t, err)
			assert.Equal(t, tt.status, apperrors.AsAppError(err).StatusCode())
		})
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"hotel_id":"h1"}`))
	var p payload
	require.NoError(t, DecodeJSON(r, &p))
	assert.Equal(t, "h1", p.HotelID)
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"hotel_id":"`+strings.Repeat("x", 64)+`"}`))
	r.Body = http.MaxBytesReader(rec, r.Body, 16)

	var p struct {
		HotelID string `json:"hotel_id"`
	}
	err := DecodeJSON(r, &p)
	require.Error(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apperrors.AsAppError(err).StatusCode())
}
