// Package occupancy derives room, bed and expense statistics from hotel
// inventory. Every function is pure and total: a nil hotel or an empty
// inventory yields zero values.
package occupancy

import (
	"math"

	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

type RoomCounts struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

type BedCounts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
}

type HotelStats struct {
	HotelID          string      `json:"hotel_id"`
	HotelName        string      `json:"hotel_name"`
	Rooms            RoomCounts  `json:"rooms"`
	Beds             BedCounts   `json:"beds"`
	Expense          model.Money `json:"expense"`
	OccupancyPercent int         `json:"occupancy_percent"`
}

type FleetStats struct {
	Hotels           int         `json:"hotels"`
	Rooms            RoomCounts  `json:"rooms"`
	Beds             BedCounts   `json:"beds"`
	Expense          model.Money `json:"expense"`
	OccupancyPercent int         `json:"occupancy_percent"`
}

func CountRooms(h *model.Hotel) RoomCounts {
	var c RoomCounts
	for _, r := range h.Rooms() {
		c.Total++
		if !r.IsFree() {
			c.Occupied++
		}
	}
	c.Available = c.Total - c.Occupied
	return c
}

// CountBeds treats a room as all-or-nothing: an occupied room contributes no
// available beds however many people actually sleep there.
func CountBeds(h *model.Hotel) BedCounts {
	var c BedCounts
	for _, r := range h.Rooms() {
		c.Total += r.Beds
		if r.IsFree() {
			c.Available += r.Beds
		}
	}
	return c
}

// Expense is the capacity cost of the hotel: every room's daily charge for
// the whole rental period, occupied or not. A missing or non-positive period
// counts as one day.
func Expense(h *model.Hotel) model.Money {
	total := model.ZeroMoney()
	if h == nil {
		return total
	}
	for _, r := range h.Rooms() {
		total = total.Add(r.ChargePerDay)
	}
	days := h.NumberOfDays
	if days <= 0 {
		days = 1
	}
	return total.MulInt(days)
}

func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func Summarize(h *model.Hotel) HotelStats {
	stats := HotelStats{
		Rooms:   CountRooms(h),
		Beds:    CountBeds(h),
		Expense: Expense(h),
	}
	if h != nil {
		stats.HotelID = h.ID
		stats.HotelName = h.Name
	}
	stats.OccupancyPercent = Percent(stats.Rooms.Occupied, stats.Rooms.Total)
	return stats
}

// Fleet sums per-hotel values without weighting.
func Fleet(hotels []*model.Hotel) FleetStats {
	fleet := FleetStats{Expense: model.ZeroMoney()}
	for _, h := range hotels {
		if h == nil {
			continue
		}
		s := Summarize(h)
		fleet.Hotels++
		fleet.Rooms.Total += s.Rooms.Total
		fleet.Rooms.Occupied += s.Rooms.Occupied
		fleet.Rooms.Available += s.Rooms.Available
		fleet.Beds.Total += s.Beds.Total
		fleet.Beds.Available += s.Beds.Available
		fleet.Expense = fleet.Expense.Add(s.Expense)
	}
	fleet.OccupancyPercent = Percent(fleet.Rooms.Occupied, fleet.Rooms.Total)
	return fleet
}
