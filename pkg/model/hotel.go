package model

import "fmt"

type ToiletType string

const (
	ToiletWestern ToiletType = "western"
	ToiletIndian  ToiletType = "indian"
)

// Room is the unit of allocation. OccupiedBy holds the id of the registration
// using the room; an empty value means the room is free.
type Room struct {
	Number       string     `json:"room_number" bson:"number" validate:"required,max=20"`
	Floor        string     `json:"floor" bson:"floor" validate:"max=10"`
	ToiletType   ToiletType `json:"toilet_type" bson:"toilet_type" validate:"required,oneof=western indian"`
	Beds         int        `json:"beds" bson:"beds" validate:"required,min=1,max=20"`
	ChargePerDay Money      `json:"charge_per_day" bson:"charge_per_day"`
	OccupiedBy   string     `json:"occupied_by,omitempty" bson:"occupied_by"`
}

func (r *Room) IsFree() bool {
	return r.OccupiedBy == ""
}

func (r *Room) IsOccupiedBy(registrationID string) bool {
	return r.OccupiedBy != "" && r.OccupiedBy == registrationID
}

type Floor struct {
	Label string `json:"floor" bson:"label" validate:"required,max=10"`
	Rooms []Room `json:"rooms" bson:"rooms" validate:"dive"`
}

type Hotel struct {
	ID           string  `json:"id" bson:"_id" validate:"required"`
	Name         string  `json:"name" bson:"name" validate:"required,min=2,max=150"`
	Address      string  `json:"address" bson:"address" validate:"max=300"`
	Contact      string  `json:"contact" bson:"contact"`
	HasElevator  bool    `json:"has_elevator" bson:"has_elevator"`
	CheckInTime  string  `json:"check_in_time" bson:"check_in_time" validate:"omitempty,datetime=15:04"`
	CheckOutTime string  `json:"check_out_time" bson:"check_out_time" validate:"omitempty,datetime=15:04"`
	NumberOfDays int     `json:"number_of_days" bson:"number_of_days"`
	Floors       []Floor `json:"floors" bson:"floors" validate:"dive"`
}

// RoomRef addresses a room. Room numbers are only unique inside their hotel.
type RoomRef struct {
	HotelID    string `json:"hotel_id" bson:"hotel_id" validate:"required,max=64"`
	RoomNumber string `json:"room_number" bson:"room_number" validate:"required,max=20"`
}

func (r RoomRef) String() string {
	return r.HotelID + "/" + r.RoomNumber
}

// Room returns a pointer into the hotel's floor tree, or nil when the hotel
// has no room with that number.
func (h *Hotel) Room(number string) *Room {
	if h == nil {
		return nil
	}
	for fi := range h.Floors {
		for ri := range h.Floors[fi].Rooms {
			if h.Floors[fi].Rooms[ri].Number == number {
				return &h.Floors[fi].Rooms[ri]
			}
		}
	}
	return nil
}

// Rooms returns every room in floor order.
func (h *Hotel) Rooms() []*Room {
	if h == nil {
		return nil
	}
	var rooms []*Room
	for fi := range h.Floors {
		for ri := range h.Floors[fi].Rooms {
			rooms = append(rooms, &h.Floors[fi].Rooms[ri])
		}
	}
	return rooms
}

// RoomsOccupiedBy lists the numbers of the rooms held by a registration.
func (h *Hotel) RoomsOccupiedBy(registrationID string) []string {
	var numbers []string
	for _, r := range h.Rooms() {
		if r.IsOccupiedBy(registrationID) {
			numbers = append(numbers, r.Number)
		}
	}
	return numbers
}

// Validate checks the inventory rules struct tags cannot express: room
// numbers unique across all floors, positive bed counts, a known toilet type
// and non-negative charges.
func (h *Hotel) Validate() error {
	seen := make(map[string]string)
	for _, f := range h.Floors {
		for _, r := range f.Rooms {
			if r.Number == "" {
				return fmt.Errorf("floor %s has a room without a number", f.Label)
			}
			if prev, ok := seen[r.Number]; ok {
				return fmt.Errorf("room %s appears on floor %s and floor %s", r.Number, prev, f.Label)
			}
			seen[r.Number] = f.Label
			if r.Beds <= 0 {
				return fmt.Errorf("room %s must have at least one bed", r.Number)
			}
			if r.ToiletType != ToiletWestern && r.ToiletType != ToiletIndian {
				return fmt.Errorf("room %s has invalid toilet type %q", r.Number, r.ToiletType)
			}
			if r.ChargePerDay.IsNegative() {
				return fmt.Errorf("room %s has a negative charge", r.Number)
			}
		}
	}
	return nil
}

// Clone returns a deep copy so callers can hold a snapshot while the store
// keeps mutating.
func (h *Hotel) Clone() *Hotel {
	if h == nil {
		return nil
	}
	c := *h
	c.Floors = make([]Floor, len(h.Floors))
	for i, f := range h.Floors {
		c.Floors[i] = Floor{Label: f.Label, Rooms: append([]Room(nil), f.Rooms...)}
	}
	return &c
}
