package model

import (
	"slices"
	"time"
)

type DocumentStatus string

const (
	DocumentsPending   DocumentStatus = "pending"
	DocumentsApproved  DocumentStatus = "approved"
	DocumentsRejected  DocumentStatus = "rejected"
	DocumentsCancelled DocumentStatus = "cancelled"
)

type RoomStatus string

const (
	RoomPending  RoomStatus = "Pending"
	RoomAssigned RoomStatus = "Assigned"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Person struct {
	Name        string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Age         int    `json:"age" bson:"age" validate:"min=0,max=120"`
	Gender      Gender `json:"gender" bson:"gender" validate:"required,oneof=male female other"`
	Handicapped bool   `json:"is_handicapped" bson:"is_handicapped"`
}

type BoardingPoint struct {
	City  string `json:"city" bson:"city" validate:"required,max=100"`
	State string `json:"state" bson:"state" validate:"required,max=100"`
}

// RoomAssignment is the room half of a registration. A registration in
// RoomAssigned status always has a HotelID and a primary RoomNumber.
type RoomAssignment struct {
	Status         RoomStatus `json:"room_status" bson:"room_status"`
	HotelID        string     `json:"hotel_id,omitempty" bson:"hotel_id,omitempty"`
	RoomNumber     string     `json:"room_number,omitempty" bson:"room_number,omitempty"`
	SecondaryRooms []string   `json:"secondary_rooms,omitempty" bson:"secondary_rooms,omitempty"`
}

func (a RoomAssignment) IsAssigned() bool {
	return a.Status == RoomAssigned
}

// Rooms returns the primary room followed by the secondary rooms.
func (a RoomAssignment) Rooms() []RoomRef {
	if !a.IsAssigned() || a.RoomNumber == "" {
		return nil
	}
	refs := make([]RoomRef, 0, 1+len(a.SecondaryRooms))
	refs = append(refs, RoomRef{HotelID: a.HotelID, RoomNumber: a.RoomNumber})
	for _, n := range a.SecondaryRooms {
		refs = append(refs, RoomRef{HotelID: a.HotelID, RoomNumber: n})
	}
	return refs
}

func (a RoomAssignment) Equal(other RoomAssignment) bool {
	return a.Status == other.Status &&
		a.HotelID == other.HotelID &&
		a.RoomNumber == other.RoomNumber &&
		slices.Equal(a.SecondaryRooms, other.SecondaryRooms)
}

func (a RoomAssignment) Clone() RoomAssignment {
	a.SecondaryRooms = slices.Clone(a.SecondaryRooms)
	return a
}

func Unassigned() RoomAssignment {
	return RoomAssignment{Status: RoomPending}
}

type Registration struct {
	ID                 string         `json:"id" bson:"_id"`
	TripID             string         `json:"trip_id" bson:"trip_id" validate:"required"`
	ContactName        string         `json:"name" bson:"contact_name" validate:"required,min=2,max=100"`
	ContactNumber      string         `json:"whatsapp_number" bson:"contact_number" validate:"required,e164"`
	PNR                string         `json:"pnr" bson:"pnr" validate:"max=20"`
	Persons            []Person       `json:"persons" bson:"persons" validate:"required,min=1,dive"`
	BoardingPoint      BoardingPoint  `json:"boarding_point" bson:"boarding_point"`
	ArrivalDate        time.Time      `json:"arrival_date" bson:"arrival_date"`
	ReturnDate         time.Time      `json:"return_date" bson:"return_date" validate:"gtefield=ArrivalDate"`
	Documents          []string       `json:"ticket_images" bson:"documents"`
	DocumentStatus     DocumentStatus `json:"document_status" bson:"document_status" validate:"oneof=pending approved rejected cancelled"`
	RejectionReason    string         `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	CancellationReason string         `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	RoomAssignment     `bson:",inline"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at"`
}

func (r *Registration) PartySize() int {
	return len(r.Persons)
}

func (r *Registration) IsCancelled() bool {
	return r.DocumentStatus == DocumentsCancelled
}

func (r *Registration) Clone() *Registration {
	if r == nil {
		return nil
	}
	c := *r
	c.Persons = slices.Clone(r.Persons)
	c.Documents = slices.Clone(r.Documents)
	c.RoomAssignment = r.RoomAssignment.Clone()
	return &c
}
