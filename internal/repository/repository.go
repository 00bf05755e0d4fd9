// Package repository defines the stores the allocation and review services
// read from and commit to. Implementations live in the memory and mongo
// subpackages.
package repository

import (
	"context"

	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

type HotelStore interface {
	Hotel(ctx context.Context, id string) (*model.Hotel, error)
	// Hotels returns a snapshot of the whole inventory taken at one instant.
	Hotels(ctx context.Context) ([]*model.Hotel, error)
	SaveHotel(ctx context.Context, hotel *model.Hotel) error
}

type RegistrationStore interface {
	RegistrationByID(ctx context.Context, id string) (*model.Registration, error)
	RegistrationsByTrip(ctx context.Context, tripID string) ([]*model.Registration, error)
	CreateRegistration(ctx context.Context, registration *model.Registration) error
	// ApplyReview moves the document status if it still equals change.From.
	ApplyReview(ctx context.Context, change *model.ReviewChange) (*model.Registration, error)
}

// Committer persists an allocation mutation. Both halves are applied or
// neither is; a mutation built from stale state fails with ErrStaleState.
type Committer interface {
	Commit(ctx context.Context, mutation *model.Mutation) error
}

type Store interface {
	HotelStore
	RegistrationStore
	Committer
	Ping(ctx context.Context) error
}
