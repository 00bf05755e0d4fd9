package model

import "time"

type MutationKind string

const (
	MutationAssign   MutationKind = "assign"
	MutationReassign MutationKind = "reassign"
	MutationUnassign MutationKind = "unassign"
	MutationDraft    MutationKind = "assign_draft"
)

// RoomChange moves one room's occupant from From to To. Stores apply it as a
// compare-and-set: if the room is no longer held by From the whole mutation
// is refused.
type RoomChange struct {
	HotelID    string `json:"hotel_id" bson:"hotel_id"`
	RoomNumber string `json:"room_number" bson:"room_number"`
	From       string `json:"from,omitempty" bson:"from"`
	To         string `json:"to,omitempty" bson:"to"`
}

func (c RoomChange) Ref() RoomRef {
	return RoomRef{HotelID: c.HotelID, RoomNumber: c.RoomNumber}
}

func (c RoomChange) Frees() bool {
	return c.From != "" && c.To == ""
}

func (c RoomChange) Occupies() bool {
	return c.To != ""
}

// Mutation is the two-sided change produced by the allocation engine. Room
// occupancy and the registration's assignment are committed together or not
// at all.
type Mutation struct {
	ID             string         `json:"id" bson:"_id"`
	Kind           MutationKind   `json:"kind" bson:"kind"`
	RegistrationID string         `json:"registration_id" bson:"registration_id"`
	RoomChanges    []RoomChange   `json:"room_changes" bson:"room_changes"`
	Before         RoomAssignment `json:"before" bson:"before"`
	After          RoomAssignment `json:"after" bson:"after"`
	At             time.Time      `json:"at" bson:"at"`
}

// Hotels returns the distinct hotel ids touched by the mutation.
func (m *Mutation) Hotels() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, c := range m.RoomChanges {
		if !seen[c.HotelID] {
			seen[c.HotelID] = true
			ids = append(ids, c.HotelID)
		}
	}
	return ids
}

func (m *Mutation) IsNoop() bool {
	return len(m.RoomChanges) == 0 && m.Before.Equal(m.After)
}

// ReviewChange moves a registration's document status. From is
// checked by the store so two reviewers cannot overwrite each other blindly.
type ReviewChange struct {
	RegistrationID     string         `json:"registration_id" bson:"registration_id"`
	From               DocumentStatus `json:"from" bson:"from"`
	To                 DocumentStatus `json:"to" bson:"to"`
	RejectionReason    string         `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	CancellationReason string         `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	At                 time.Time      `json:"at" bson:"at"`
}
