package service

import (
	"context"
	"errors"

	"github.com/vinaythakkar13/yatra-sub001/internal/occupancy"
	"github.com/vinaythakkar13/yatra-sub001/internal/repository"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

const (
	StatusFree     = "free"
	StatusOccupied = "occupied"
)

type RoomListing struct {
	model.Room
	Status string `json:"status"`
}

// HotelOccupancy pairs the statistics with the room listing they were
// computed from, so the two always agree.
type HotelOccupancy struct {
	Stats occupancy.HotelStats `json:"stats"`
	Rooms []RoomListing        `json:"rooms"`
}

type FleetOccupancy struct {
	Fleet  occupancy.FleetStats   `json:"fleet"`
	Hotels []occupancy.HotelStats `json:"hotels"`
}

type OccupancyService interface {
	Hotel(ctx context.Context, hotelID string) (*HotelOccupancy, error)
	Fleet(ctx context.Context) (*FleetOccupancy, error)
}

type occupancyService struct {
	store repository.HotelStore
	cfg   *config.Config
}

func NewOccupancyService(store repository.HotelStore, cfg *config.Config) OccupancyService {
	return &occupancyService{store: store, cfg: cfg}
}

func (s *occupancyService) Hotel(ctx context.Context, hotelID string) (*HotelOccupancy, error) {
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	hotel, err := s.store.Hotel(ctx, hotelID)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return nil, apperrors.HotelNotFound(hotelID)
		}
		s.cfg.Log.Error("Failed to load hotel", "hotel_id", hotelID, "error", err)
		return nil, apperrors.Internal("Failed to load hotel", err)
	}

	out := &HotelOccupancy{Stats: occupancy.Summarize(hotel), Rooms: make([]RoomListing, 0)}
	for _, r := range hotel.Rooms() {
		status := StatusFree
		if !r.IsFree() {
			status = StatusOccupied
		}
		out.Rooms = append(out.Rooms, RoomListing{Room: *r, Status: status})
	}
	s.cfg.Log.Debug("Hotel occupancy computed", "hotel_id", hotelID, "rooms", out.Stats.Rooms.Total)
	return out, nil
}

func (s *occupancyService) Fleet(ctx context.Context) (*FleetOccupancy, error) {
	hotels, err := s.store.Hotels(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load hotels", "error", err)
		return nil, apperrors.Internal("Failed to load hotels", err)
	}

	out := &FleetOccupancy{Fleet: occupancy.Fleet(hotels), Hotels: make([]occupancy.HotelStats, 0, len(hotels))}
	for _, h := range hotels {
		out.Hotels = append(out.Hotels, occupancy.Summarize(h))
	}
	return out, nil
}
