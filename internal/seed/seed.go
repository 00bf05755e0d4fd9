// Package seed loads hotel inventory and registrations from a JSON file.
// Seeded rooms start free and seeded registrations start without a room;
// allocations are only ever made through the allocation service.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/vinaythakkar13/yatra-sub001/internal/repository"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
	"github.com/vinaythakkar13/yatra-sub001/pkg/sanitizer"
)

type Data struct {
	Hotels        []*model.Hotel        `json:"hotels"`
	Registrations []*model.Registration `json:"registrations"`
}

type Report struct {
	Hotels        int `json:"hotels"`
	Registrations int `json:"registrations"`
	Skipped       int `json:"skipped"`
}

type Loader struct {
	store    repository.Store
	validate *validator.Validate
	log      *logger.Logger
}

func NewLoader(store repository.Store, log *logger.Logger) *Loader {
	return &Loader{
		store:    store,
		validate: validator.New(),
		log:      log.Component("seed"),
	}
}

func ReadFile(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Data, error) {
	var data Data
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode seed data: %w", err)
	}
	return &data, nil
}

// Load writes hotels that do not exist yet and registrations whose id is
// new. Records already present are counted as skipped, so re-running a seed
// never touches live allocations.
func (l *Loader) Load(ctx context.Context, data *Data) (*Report, error) {
	report := &Report{}
	if data == nil {
		return report, nil
	}

	for i, hotel := range data.Hotels {
		if hotel == nil {
			return report, fmt.Errorf("hotel #%d is empty", i)
		}
		prepareHotel(hotel)
		if err := l.validate.Struct(hotel); err != nil {
			return report, fmt.Errorf("hotel %q: %w", hotel.ID, err)
		}

		_, err := l.store.Hotel(ctx, hotel.ID)
		switch {
		case err == nil:
			l.log.Debug("Hotel already present", "hotel_id", hotel.ID)
			report.Skipped++
			continue
		case !errors.Is(err, repository.ErrHotelNotFound):
			return report, fmt.Errorf("look up hotel %q: %w", hotel.ID, err)
		}

		if err := l.store.SaveHotel(ctx, hotel); err != nil {
			return report, fmt.Errorf("save hotel %q: %w", hotel.ID, err)
		}
		report.Hotels++
	}

	for i, reg := range data.Registrations {
		if reg == nil {
			return report, fmt.Errorf("registration #%d is empty", i)
		}
		prepareRegistration(reg)
		if err := l.validate.Struct(reg); err != nil {
			return report, fmt.Errorf("registration %q: %w", reg.ID, err)
		}

		err := l.store.CreateRegistration(ctx, reg)
		if errors.Is(err, repository.ErrDuplicateRegistration) {
			l.log.Debug("Registration already present", "registration_id", reg.ID)
			report.Skipped++
			continue
		}
		if err != nil {
			return report, fmt.Errorf("create registration %q: %w", reg.ID, err)
		}
		report.Registrations++
	}

	l.log.Info("Seed applied",
		"hotels", report.Hotels,
		"registrations", report.Registrations,
		"skipped", report.Skipped,
	)
	return report, nil
}

func prepareHotel(h *model.Hotel) {
	h.ID = sanitizer.TrimAndNormalize(h.ID)
	h.Name = sanitizer.TrimAndNormalize(h.Name)
	for fi := range h.Floors {
		for ri := range h.Floors[fi].Rooms {
			room := &h.Floors[fi].Rooms[ri]
			room.Number = sanitizer.NormalizeRoomNumber(room.Number)
			if room.Floor == "" {
				room.Floor = h.Floors[fi].Label
			}
			room.OccupiedBy = ""
		}
	}
}

func prepareRegistration(r *model.Registration) {
	r.ID = sanitizer.TrimAndNormalize(r.ID)
	r.TripID = sanitizer.TrimAndNormalize(r.TripID)
	r.ContactName = sanitizer.NormalizeName(r.ContactName)
	r.ContactNumber = sanitizer.NormalizePhone(r.ContactNumber)
	r.Documents = sanitizer.NormalizeDocuments(r.Documents)
	r.BoardingPoint.City = sanitizer.NormalizeCity(r.BoardingPoint.City)
	for i := range r.Persons {
		r.Persons[i].Name = sanitizer.NormalizeName(r.Persons[i].Name)
	}
	if r.DocumentStatus == "" {
		r.DocumentStatus = model.DocumentsPending
	}
	r.RoomAssignment = model.Unassigned()
}
