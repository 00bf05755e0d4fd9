package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

func TestValidateRoomRef(t *testing.T) {
	v := NewAllocationValidator(logger.Discard())

	tests := []struct {
		name    string
		ref     model.RoomRef
		wantErr bool
	}{
		{"valid", model.RoomRef{HotelID: "h1", RoomNumber: "101"}, false},
		{"missing hotel", model.RoomRef{RoomNumber: "101"}, true},
		{"missing room", model.RoomRef{HotelID: "h1"}, true},
		{"room too long", model.RoomRef{HotelID: "h1", RoomNumber: "1234567890123456789012"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRoomRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRoomRef() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDraft(t *testing.T) {
	v := NewAllocationValidator(logger.Discard())

	tests := []struct {
		name    string
		req     *model.DraftRequest
		wantErr string
	}{
		{
			name: "valid",
			req:  &model.DraftRequest{HotelID: "h1", Rooms: []string{"101", "G-2"}, Beds: map[string]int{"101-0": 0, "G-2-1": 1}},
		},
		{
			name:    "no rooms",
			req:     &model.DraftRequest{HotelID: "h1"},
			wantErr: "Rooms is required",
		},
		{
			name:    "malformed bed key",
			req:     &model.DraftRequest{HotelID: "h1", Rooms: []string{"101"}, Beds: map[string]int{"101": 0}},
			wantErr: "must look like",
		},
		{
			name:    "negative person",
			req:     &model.DraftRequest{HotelID: "h1", Rooms: []string{"101"}, Beds: map[string]int{"101-0": -1}},
			wantErr: "must be at least 0",
		},
		{
			name:    "bed in unselected room",
			req:     &model.DraftRequest{HotelID: "h1", Rooms: []string{"101"}, Beds: map[string]int{"102-0": 0}},
			wantErr: "which is not selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDraft(tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if !containsMessage(verrs, tt.wantErr) {
				t.Errorf("expected message containing %q, got %v", tt.wantErr, verrs)
			}
		})
	}
}

func containsMessage(errs ValidationErrors, want string) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, want) {
			return true
		}
	}
	return false
}
