package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaythakkar13/yatra-sub001/internal/repository"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

type mockHotelStore struct {
	hotelFunc  func(ctx context.Context, id string) (*model.Hotel, error)
	hotelsFunc func(ctx context.Context) ([]*model.Hotel, error)
}

func (m *mockHotelStore) Hotel(ctx context.Context, id string) (*model.Hotel, error) {
	return m.hotelFunc(ctx, id)
}

func (m *mockHotelStore) Hotels(ctx context.Context) ([]*model.Hotel, error) {
	return m.hotelsFunc(ctx)
}

func (m *mockHotelStore) SaveHotel(ctx context.Context, hotel *model.Hotel) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{Log: logger.Discard()}
}

func sampleHotel() *model.Hotel {
	return &model.Hotel{
		ID: "h1", Name: "Shanti Niwas", NumberOfDays: 2,
		Floors: []model.Floor{{Label: "1", Rooms: []model.Room{
			{Number: "101", Beds: 2, ChargePerDay: model.MoneyFromInt(500), OccupiedBy: "reg-1"},
			{Number: "102", Beds: 3, ChargePerDay: model.MoneyFromInt(700)},
		}}},
	}
}

func TestHotel_StatsMatchListing(t *testing.T) {
	store := &mockHotelStore{hotelFunc: func(ctx context.Context, id string) (*model.Hotel, error) {
		return sampleHotel(), nil
	}}
	svc := NewOccupancyService(store, testConfig())

	out, err := svc.Hotel(context.Background(), "h1")
	require.NoError(t, err)

	occupied := 0
	for _, r := range out.Rooms {
		if r.Status == StatusOccupied {
			occupied++
		}
	}
	assert.Equal(t, out.Stats.Rooms.Occupied, occupied)
	assert.Equal(t, 2, out.Stats.Rooms.Total)
	assert.Equal(t, 3, out.Stats.Beds.Available)
	assert.Equal(t, 50, out.Stats.OccupancyPercent)
	assert.True(t, out.Stats.Expense.Equal(model.MoneyFromInt(2400)))
}

func TestHotel_Errors(t *testing.T) {
	store := &mockHotelStore{hotelFunc: func(ctx context.Context, id string) (*model.Hotel, error) {
		if id == "missing" {
			return nil, repository.ErrHotelNotFound
		}
		return nil, errors.New("connection reset")
	}}
	svc := NewOccupancyService(store, testConfig())

	_, err := svc.Hotel(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeHotelNotFound))

	_, err = svc.Hotel(context.Background(), "h1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))

	_, err = svc.Hotel(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestFleet(t *testing.T) {
	store := &mockHotelStore{hotelsFunc: func(ctx context.Context) ([]*model.Hotel, error) {
		return []*model.Hotel{sampleHotel(), {ID: "h2", Name: "Empty"}}, nil
	}}
	svc := NewOccupancyService(store, testConfig())

	out, err := svc.Fleet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, out.Fleet.Hotels)
	assert.Len(t, out.Hotels, 2)
	assert.Equal(t, 1, out.Fleet.Rooms.Occupied)
	assert.Equal(t, 0, out.Hotels[1].Rooms.Total)
}
