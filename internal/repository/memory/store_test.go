package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaythakkar13/yatra-sub001/internal/repository"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.SaveHotel(ctx, &model.Hotel{
		ID:   "h1",
		Name: "Shanti Niwas",
		Floors: []model.Floor{{Label: "1", Rooms: []model.Room{
			{Number: "101", Beds: 2, ToiletType: model.ToiletWestern},
			{Number: "102", Beds: 2, ToiletType: model.ToiletIndian},
		}}},
	}))
	require.NoError(t, s.CreateRegistration(ctx, &model.Registration{
		ID:             "reg-1",
		TripID:         "trip-1",
		DocumentStatus: model.DocumentsPending,
		RoomAssignment: model.Unassigned(),
	}))
	return s
}

func assignMutation() *model.Mutation {
	return &model.Mutation{
		ID:             "m1",
		Kind:           model.MutationAssign,
		RegistrationID: "reg-1",
		RoomChanges:    []model.RoomChange{{HotelID: "h1", RoomNumber: "101", To: "reg-1"}},
		Before:         model.Unassigned(),
		After:          model.RoomAssignment{Status: model.RoomAssigned, HotelID: "h1", RoomNumber: "101"},
		At:             time.Now().UTC(),
	}
}

func TestCommit_AppliesBothHalves(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.Commit(ctx, assignMutation()))

	h, err := s.Hotel(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, h.Room("101").IsOccupiedBy("reg-1"))

	r, err := s.RegistrationByID(ctx, "reg-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoomAssigned, r.Status)
	assert.Equal(t, "101", r.RoomNumber)
	assert.Len(t, s.Journal(), 1)
}

func TestCommit_StaleRegistration(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	require.NoError(t, s.Commit(ctx, assignMutation()))

	err := s.Commit(ctx, assignMutation())
	require.ErrorIs(t, err, repository.ErrStaleState)
}

func TestCommit_StaleRoomLeavesEverythingUntouched(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	m := assignMutation()
	m.RoomChanges = append(m.RoomChanges, model.RoomChange{HotelID: "h1", RoomNumber: "102", From: "reg-9", To: "reg-1"})
	err := s.Commit(ctx, m)
	require.ErrorIs(t, err, repository.ErrStaleState)

	h, _ := s.Hotel(ctx, "h1")
	assert.True(t, h.Room("101").IsFree())
	assert.True(t, h.Room("102").IsFree())
	r, _ := s.RegistrationByID(ctx, "reg-1")
	assert.Equal(t, model.RoomPending, r.Status)
	assert.Empty(t, s.Journal())
}

func TestCommit_UnknownTargets(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	m := assignMutation()
	m.RoomChanges[0].RoomNumber = "999"
	require.ErrorIs(t, s.Commit(ctx, m), repository.ErrRoomNotFound)

	m = assignMutation()
	m.RoomChanges[0].HotelID = "h9"
	require.ErrorIs(t, s.Commit(ctx, m), repository.ErrHotelNotFound)

	m = assignMutation()
	m.RegistrationID = "reg-9"
	require.ErrorIs(t, s.Commit(ctx, m), repository.ErrRegistrationNotFound)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	h, _ := s.Hotel(ctx, "h1")
	h.Room("101").OccupiedBy = "reg-x"

	again, _ := s.Hotel(ctx, "h1")
	assert.True(t, again.Room("101").IsFree())
}

func TestSaveHotel_RejectsDuplicateRooms(t *testing.T) {
	s := NewStore()
	err := s.SaveHotel(context.Background(), &model.Hotel{
		ID: "h1",
		Floors: []model.Floor{
			{Label: "1", Rooms: []model.Room{{Number: "101", Beds: 1, ToiletType: model.ToiletWestern}}},
			{Label: "2", Rooms: []model.Room{{Number: "101", Beds: 1, ToiletType: model.ToiletWestern}}},
		},
	})
	require.ErrorIs(t, err, repository.ErrInvalidInventory)
	assert.Contains(t, err.Error(), "appears on floor 1 and floor 2")
}

func TestSaveHotel_RejectsUnknownToiletType(t *testing.T) {
	s := NewStore()
	err := s.SaveHotel(context.Background(), &model.Hotel{
		ID:     "h1",
		Floors: []model.Floor{{Label: "1", Rooms: []model.Room{{Number: "101", Beds: 1, ToiletType: "bucket"}}}},
	})
	require.ErrorIs(t, err, repository.ErrInvalidInventory)
	assert.Contains(t, err.Error(), "invalid toilet type")
}

func TestApplyReview(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	r, err := s.ApplyReview(ctx, &model.ReviewChange{
		RegistrationID: "reg-1", From: model.DocumentsPending, To: model.DocumentsRejected, RejectionReason: "blurry ticket",
	})
	require.NoError(t, err)
	assert.Equal(t, "blurry ticket", r.RejectionReason)

	_, err = s.ApplyReview(ctx, &model.ReviewChange{RegistrationID: "reg-1", From: model.DocumentsPending, To: model.DocumentsApproved})
	require.ErrorIs(t, err, repository.ErrStaleState)

	r, err = s.ApplyReview(ctx, &model.ReviewChange{RegistrationID: "reg-1", From: model.DocumentsRejected, To: model.DocumentsApproved})
	require.NoError(t, err)
	assert.Empty(t, r.RejectionReason)
}

func TestRegistrationsByTrip(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRegistration(ctx, &model.Registration{TripID: "trip-1", CreatedAt: time.Now().Add(time.Hour)}))
	require.NoError(t, s.CreateRegistration(ctx, &model.Registration{TripID: "trip-2"}))
	require.ErrorIs(t, s.CreateRegistration(ctx, &model.Registration{ID: "reg-1"}), repository.ErrDuplicateRegistration)

	regs, err := s.RegistrationsByTrip(ctx, "trip-1")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "reg-1", regs[0].ID)
	assert.NotEmpty(t, regs[1].ID)
}
