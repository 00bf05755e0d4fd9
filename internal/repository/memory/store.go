// Package memory is the single-process store. Every read returns a deep copy
// and every commit is applied under one mutex, so a reader never sees a room
// and its registration out of step.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vinaythakkar13/yatra-sub001/internal/repository"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

type Store struct {
	mu            sync.RWMutex
	hotelOrder    []string
	hotels        map[string]*model.Hotel
	registrations map[string]*model.Registration
	journal       []model.Mutation
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		hotels:        make(map[string]*model.Hotel),
		registrations: make(map[string]*model.Registration),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Hotel(ctx context.Context, id string) (*model.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hotels[id]
	if !ok {
		return nil, repository.ErrHotelNotFound
	}
	return h.Clone(), nil
}

func (s *Store) Hotels(ctx context.Context) ([]*model.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hotels := make([]*model.Hotel, 0, len(s.hotelOrder))
	for _, id := range s.hotelOrder {
		hotels = append(hotels, s.hotels[id].Clone())
	}
	return hotels, nil
}

func (s *Store) SaveHotel(ctx context.Context, hotel *model.Hotel) error {
	if hotel == nil || hotel.ID == "" {
		return fmt.Errorf("%w: hotel id is required", repository.ErrInvalidInventory)
	}
	if err := hotel.Validate(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidInventory, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hotels[hotel.ID]; !ok {
		s.hotelOrder = append(s.hotelOrder, hotel.ID)
	}
	s.hotels[hotel.ID] = hotel.Clone()
	return nil
}

func (s *Store) RegistrationByID(ctx context.Context, id string) (*model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.registrations[id]
	if !ok {
		return nil, repository.ErrRegistrationNotFound
	}
	return r.Clone(), nil
}

func (s *Store) RegistrationsByTrip(ctx context.Context, tripID string) ([]*model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Registration
	for _, r := range s.registrations {
		if r.TripID == tripID {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateRegistration(ctx context.Context, registration *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if _, ok := s.registrations[registration.ID]; ok {
		return repository.ErrDuplicateRegistration
	}
	now := time.Now().UTC()
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = now
	}
	registration.UpdatedAt = now
	s.registrations[registration.ID] = registration.Clone()
	return nil
}

func (s *Store) ApplyReview(ctx context.Context, change *model.ReviewChange) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registrations[change.RegistrationID]
	if !ok {
		return nil, repository.ErrRegistrationNotFound
	}
	if r.DocumentStatus != change.From {
		return nil, repository.ErrStaleState
	}

	r.DocumentStatus = change.To
	switch change.To {
	case model.DocumentsApproved:
		r.RejectionReason = ""
	case model.DocumentsRejected:
		r.RejectionReason = change.RejectionReason
	case model.DocumentsCancelled:
		r.CancellationReason = change.CancellationReason
	}
	r.UpdatedAt = change.At
	return r.Clone(), nil
}

// Commit applies the room changes to working copies first and swaps them in
// only when every compare-and-set holds.
func (s *Store) Commit(ctx context.Context, mutation *model.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registrations[mutation.RegistrationID]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	if !reg.RoomAssignment.Equal(mutation.Before) {
		return fmt.Errorf("%w: registration %s", repository.ErrStaleState, reg.ID)
	}

	working := make(map[string]*model.Hotel)
	for _, change := range mutation.RoomChanges {
		h, ok := working[change.HotelID]
		if !ok {
			stored, exists := s.hotels[change.HotelID]
			if !exists {
				return repository.ErrHotelNotFound
			}
			h = stored.Clone()
			working[change.HotelID] = h
		}
		room := h.Room(change.RoomNumber)
		if room == nil {
			return repository.ErrRoomNotFound
		}
		if room.OccupiedBy != change.From {
			return fmt.Errorf("%w: room %s", repository.ErrStaleState, change.Ref())
		}
		room.OccupiedBy = change.To
	}

	for id, h := range working {
		s.hotels[id] = h
	}
	reg.RoomAssignment = mutation.After.Clone()
	reg.UpdatedAt = mutation.At
	s.journal = append(s.journal, *mutation)
	return nil
}

// Journal returns the committed mutations in commit order.
func (s *Store) Journal() []model.Mutation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.journal)
}
