package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaythakkar13/yatra-sub001/internal/events"
	"github.com/vinaythakkar13/yatra-sub001/internal/health"
	"github.com/vinaythakkar13/yatra-sub001/internal/repository/memory"
	"github.com/vinaythakkar13/yatra-sub001/pkg/app"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	"github.com/vinaythakkar13/yatra-sub001/pkg/kafka"
	"github.com/vinaythakkar13/yatra-sub001/pkg/lock"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              config.DefaultPort,
		StoreBackend:      config.StoreMemory,
		MongoDatabaseName: config.DefaultMongoDatabaseName,
		RequestTimeout:    config.DefaultRequestTimeout,
		MaxRequestSize:    config.DefaultMaxRequestSize,
		IdempotencyTTL:    config.DefaultIdempotencyTTL,
		ReadTimeout:       config.DefaultReadTimeout,
		WriteTimeout:      config.DefaultWriteTimeout,
		IdleTimeout:       config.DefaultIdleTimeout,
		ShutdownTimeout:   config.DefaultShutdownTimeout,
		LockTTL:           config.DefaultLockTTL,
		LockRetryWindow:   config.DefaultLockRetryWindow,
		Log:               logger.Discard(),
	}
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SaveHotel(ctx, &model.Hotel{
		ID:           "h1",
		Name:         "Shanti Niwas",
		NumberOfDays: 3,
		Floors: []model.Floor{{Label: "1", Rooms: []model.Room{
			{Number: "101", Beds: 2, ToiletType: model.ToiletWestern, ChargePerDay: model.MoneyFromInt(1000)},
			{Number: "102", Beds: 2, ToiletType: model.ToiletIndian, ChargePerDay: model.MoneyFromInt(800)},
		}}},
	}))
	require.NoError(t, store.CreateRegistration(ctx, &model.Registration{
		ID:             "reg-1",
		TripID:         "trip-1",
		ContactName:    "Asha Patel",
		Persons:        []model.Person{{Name: "Asha Patel", Gender: model.GenderFemale}},
		DocumentStatus: model.DocumentsPending,
		RoomAssignment: model.Unassigned(),
		CreatedAt:      time.Now().UTC(),
	}))
	return store
}

func TestInitStore_Memory(t *testing.T) {
	store, locker := initStore(testConfig())

	assert.IsType(t, &memory.Store{}, store)
	assert.IsType(t, &lock.KeyedLocker{}, locker)
}

func TestServer_AssignThenOccupancy(t *testing.T) {
	cfg := testConfig()
	store := seededStore(t)
	svcs := initServices(cfg, store, lock.NewKeyedLocker(), events.NoopPublisher{})

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(health.NewHealthHandler(store, cfg.StoreBackend, nil, cfg.Log), svcs.handlers(cfg)...)
	handler := serverApp.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations/reg-1/assign",
		strings.NewReader(`{"hotel_id":"h1","room_number":"101"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hotels/h1/occupancy", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"occupied":1`)
	assert.Contains(t, rec.Body.String(), `"occupancy_percent":50`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"memory"`)
}

func TestServer_AssignTakenRoomConflicts(t *testing.T) {
	cfg := testConfig()
	store := seededStore(t)
	require.NoError(t, store.CreateRegistration(context.Background(), &model.Registration{
		ID:             "reg-2",
		TripID:         "trip-1",
		Persons:        []model.Person{{Name: "Ravi Shah", Gender: model.GenderMale}},
		DocumentStatus: model.DocumentsPending,
		RoomAssignment: model.Unassigned(),
	}))
	svcs := initServices(cfg, store, lock.NewKeyedLocker(), events.NoopPublisher{})
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(health.NewHealthHandler(store, cfg.StoreBackend, nil, cfg.Log), svcs.handlers(cfg)...)

	_, err := svcs.allocation.Assign(context.Background(), "reg-1", model.RoomRef{HotelID: "h1", RoomNumber: "101"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations/reg-2/assign",
		strings.NewReader(`{"hotel_id":"h1","room_number":"101"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	serverApp.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ROOM_UNAVAILABLE")
}

func TestReleaseRooms_FreesAssignedRoom(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	store := seededStore(t)
	svcs := initServices(cfg, store, lock.NewKeyedLocker(), events.NoopPublisher{})

	_, err := svcs.allocation.Assign(ctx, "reg-1", model.RoomRef{HotelID: "h1", RoomNumber: "101"})
	require.NoError(t, err)

	require.NoError(t, releaseRooms(svcs.allocation)(ctx, "reg-1"))

	hotel, err := store.Hotel(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, hotel.Room("101").IsFree())

	// Releasing again is a no-op.
	require.NoError(t, releaseRooms(svcs.allocation)(ctx, "reg-1"))
}

func TestCancellationIntake_CancelsAndReleases(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	store := seededStore(t)
	svcs := initServices(cfg, store, lock.NewKeyedLocker(), events.NoopPublisher{})

	_, err := svcs.allocation.Assign(ctx, "reg-1", model.RoomRef{HotelID: "h1", RoomNumber: "101"})
	require.NoError(t, err)

	msg, err := kafka.NewMessage().
		WithKey("reg-1").
		WithEventType(events.RegistrationCancelled).
		WithValue(events.CancellationMessage{RegistrationID: "reg-1", Reason: "Trip withdrawn", CancelledAt: time.Now().UTC()}).
		Build()
	require.NoError(t, err)

	intake := events.NewCancellationHandler(svcs.review, releaseRooms(svcs.allocation), cfg.Log)
	require.NoError(t, intake.Handle(ctx, msg))

	reg, err := store.RegistrationByID(ctx, "reg-1")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentsCancelled, reg.DocumentStatus)
	assert.False(t, reg.IsAssigned())

	hotel, err := store.Hotel(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, hotel.Room("101").IsFree())
}
