package service

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
	"github.com/vinaythakkar13/yatra-sub001/pkg/sanitizer"
)

type draftRoom struct {
	Number string
	Beds   int
}

// DraftAllocation is an in-progress multi-room selection for one
// registration. It never touches the store; AssignDraft commits it.
type DraftAllocation struct {
	HotelID   string
	partySize int
	rooms     []draftRoom
	beds      map[string]int
}

func NewDraft(hotelID string, partySize int) *DraftAllocation {
	return &DraftAllocation{
		HotelID:   hotelID,
		partySize: partySize,
		beds:      make(map[string]int),
	}
}

func BedKey(roomNumber string, bedIndex int) string {
	return roomNumber + "-" + strconv.Itoa(bedIndex)
}

// ParseBedKey splits on the last dash so room numbers may contain dashes.
func ParseBedKey(key string) (string, int, error) {
	i := strings.LastIndex(key, "-")
	if i <= 0 {
		return "", 0, fmt.Errorf("malformed bed key %q", key)
	}
	bed, err := strconv.Atoi(key[i+1:])
	if err != nil || bed < 0 {
		return "", 0, fmt.Errorf("malformed bed key %q", key)
	}
	return key[:i], bed, nil
}

func (d *DraftAllocation) PartySize() int {
	return d.partySize
}

// SelectRoom adds a room to the selection. Selecting a room twice is a no-op.
func (d *DraftAllocation) SelectRoom(number string, beds int) error {
	number = sanitizer.NormalizeRoomNumber(number)
	if number == "" {
		return apperrors.InvalidInput("Room number cannot be empty")
	}
	if beds <= 0 {
		return apperrors.InvalidInput(fmt.Sprintf("Room %s has no beds", number))
	}
	if d.room(number) != nil {
		return nil
	}
	d.rooms = append(d.rooms, draftRoom{Number: number, Beds: beds})
	return nil
}

// DeselectRoom removes a room and every bed assignment inside it. The bed
// keys go first so no assignment ever points at an unselected room.
func (d *DraftAllocation) DeselectRoom(number string) {
	number = sanitizer.NormalizeRoomNumber(number)
	for key := range d.beds {
		if room, _, err := ParseBedKey(key); err == nil && room == number {
			delete(d.beds, key)
		}
	}
	d.rooms = slices.DeleteFunc(d.rooms, func(r draftRoom) bool { return r.Number == number })
}

// ToggleBed puts a person on a bed. Toggling a bed that is already taken
// frees it. A person already on another bed is moved.
func (d *DraftAllocation) ToggleBed(roomNumber string, bedIndex, personIndex int) error {
	roomNumber = sanitizer.NormalizeRoomNumber(roomNumber)
	room := d.room(roomNumber)
	if room == nil {
		return apperrors.InvalidInput(fmt.Sprintf("Room %s is not selected", roomNumber))
	}
	if bedIndex < 0 || bedIndex >= room.Beds {
		return apperrors.InvalidInput(fmt.Sprintf("Room %s has no bed %d", roomNumber, bedIndex))
	}
	if personIndex < 0 {
		return apperrors.InvalidInput("Person index cannot be negative")
	}
	if personIndex >= d.partySize {
		return apperrors.CapacityExceeded(personIndex+1, d.partySize)
	}

	key := BedKey(roomNumber, bedIndex)
	if _, taken := d.beds[key]; taken {
		delete(d.beds, key)
		return nil
	}

	for k, p := range d.beds {
		if p == personIndex {
			delete(d.beds, k)
		}
	}
	if len(d.beds)+1 > d.partySize {
		return apperrors.CapacityExceeded(len(d.beds)+1, d.partySize)
	}
	d.beds[key] = personIndex
	return nil
}

// Rooms returns the selected room numbers in selection order. The first one
// becomes the registration's primary room.
func (d *DraftAllocation) Rooms() []string {
	numbers := make([]string, len(d.rooms))
	for i, r := range d.rooms {
		numbers[i] = r.Number
	}
	return numbers
}

func (d *DraftAllocation) Assignments() map[string]int {
	return maps.Clone(d.beds)
}

func (d *DraftAllocation) AssignedBeds() int {
	return len(d.beds)
}

func (d *DraftAllocation) room(number string) *draftRoom {
	for i := range d.rooms {
		if d.rooms[i].Number == number {
			return &d.rooms[i]
		}
	}
	return nil
}
