package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vinaythakkar13/yatra-sub001/internal/allocation/validator"
	"github.com/vinaythakkar13/yatra-sub001/internal/events"
	"github.com/vinaythakkar13/yatra-sub001/internal/repository"
	reviewservice "github.com/vinaythakkar13/yatra-sub001/internal/review/service"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
	"github.com/vinaythakkar13/yatra-sub001/pkg/lock"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
	"github.com/vinaythakkar13/yatra-sub001/pkg/sanitizer"
)

// maxLockAttempts bounds how often a writer re-locks when the registration
// moved to another hotel between the unlocked read and the locked one.
const maxLockAttempts = 3

type AllocationService interface {
	Assign(ctx context.Context, registrationID string, ref model.RoomRef) (*Result, error)
	Reassign(ctx context.Context, registrationID string, ref model.RoomRef) (*Result, error)
	Unassign(ctx context.Context, registrationID string) (*Result, error)
	NewDraft(ctx context.Context, registrationID string, req *model.DraftRequest) (*DraftAllocation, error)
	AssignDraft(ctx context.Context, registrationID string, draft *DraftAllocation) (*Result, error)
	Rooms(ctx context.Context, registrationID string) (*RoomsView, error)
}

// Result explains a committed (or no-op) allocation: the mutation, the
// registration as it now stands, and which rooms changed hands.
type Result struct {
	Mutation     *model.Mutation     `json:"mutation,omitempty"`
	Registration *model.Registration `json:"registration"`
	Freed        []model.RoomRef     `json:"freed,omitempty"`
	Occupied     []model.RoomRef     `json:"occupied,omitempty"`
	Noop         bool                `json:"noop"`
}

type RoomsView struct {
	Registration *model.Registration `json:"registration"`
	Rooms        []model.Room        `json:"rooms"`
}

type allocationService struct {
	store     repository.Store
	locker    lock.Locker
	publisher events.Publisher
	validator *validator.AllocationValidator
	cfg       *config.Config
}

func NewAllocationService(
	store repository.Store,
	locker lock.Locker,
	publisher events.Publisher,
	validator *validator.AllocationValidator,
	cfg *config.Config,
) AllocationService {
	return &allocationService{
		store:     store,
		locker:    locker,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *allocationService) Assign(ctx context.Context, registrationID string, ref model.RoomRef) (*Result, error) {
	ref, err := s.validateRef(registrationID, ref)
	if err != nil {
		return nil, err
	}

	reg, unlock, err := s.lockRegistration(ctx, registrationID, ref.HotelID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := reviewservice.Eligible(reg); err != nil {
		s.cfg.Log.Warn("Assign refused", "registration_id", registrationID, "error", err)
		return nil, err
	}
	if reg.IsAssigned() {
		err := apperrors.RegistrationNotEligible(reg.ID, fmt.Sprintf("already assigned to room %s", reg.RoomNumber))
		s.cfg.Log.Warn("Assign refused", "registration_id", registrationID, "error", err)
		return nil, err
	}

	after := model.RoomAssignment{Status: model.RoomAssigned, HotelID: ref.HotelID, RoomNumber: ref.RoomNumber}
	return s.commit(ctx, model.MutationAssign, reg, after)
}

// Reassign moves a registration to a new room in one commit. All rooms it
// held are released; on failure nothing changes.
func (s *allocationService) Reassign(ctx context.Context, registrationID string, ref model.RoomRef) (*Result, error) {
	ref, err := s.validateRef(registrationID, ref)
	if err != nil {
		return nil, err
	}

	reg, unlock, err := s.lockRegistration(ctx, registrationID, ref.HotelID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := reviewservice.Eligible(reg); err != nil {
		s.cfg.Log.Warn("Reassign refused", "registration_id", registrationID, "error", err)
		return nil, err
	}

	if reg.IsAssigned() && reg.HotelID == ref.HotelID && reg.RoomNumber == ref.RoomNumber && len(reg.SecondaryRooms) == 0 {
		s.cfg.Log.Debug("Reassign to current room", "registration_id", registrationID, "room", ref.String())
		return &Result{Registration: reg, Noop: true}, nil
	}

	kind := model.MutationReassign
	if !reg.IsAssigned() {
		kind = model.MutationAssign
	}
	after := model.RoomAssignment{Status: model.RoomAssigned, HotelID: ref.HotelID, RoomNumber: ref.RoomNumber}
	return s.commit(ctx, kind, reg, after)
}

// Unassign releases every room the registration holds. A registration with
// no room is left as is.
func (s *allocationService) Unassign(ctx context.Context, registrationID string) (*Result, error) {
	if registrationID == "" {
		return nil, apperrors.InvalidInput("Registration ID cannot be empty")
	}

	reg, unlock, err := s.lockRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !reg.IsAssigned() {
		s.cfg.Log.Debug("Unassign on registration without room", "registration_id", registrationID)
		return &Result{Registration: reg, Noop: true}, nil
	}

	return s.commit(ctx, model.MutationUnassign, reg, model.Unassigned())
}

// NewDraft builds a draft from a request, taking bed counts from the hotel
// and the party size from the registration.
func (s *allocationService) NewDraft(ctx context.Context, registrationID string, req *model.DraftRequest) (*DraftAllocation, error) {
	if registrationID == "" {
		return nil, apperrors.InvalidInput("Registration ID cannot be empty")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Draft request cannot be empty")
	}
	req.HotelID = sanitizer.TrimAndNormalize(req.HotelID)
	req.Rooms = sanitizer.NormalizeRoomNumbers(req.Rooms)
	beds := make(map[string]int, len(req.Beds))
	for key, person := range req.Beds {
		beds[sanitizer.NormalizeRoomNumber(key)] = person
	}
	req.Beds = beds
	if err := s.validator.ValidateDraft(req); err != nil {
		s.cfg.Log.Warn("Draft validation failed", "registration_id", registrationID, "error", err)
		return nil, apperrors.Validation("Draft validation failed", map[string]any{"error": err.Error()})
	}

	reg, err := s.loadRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	hotel, err := s.loadHotel(ctx, req.HotelID)
	if err != nil {
		return nil, err
	}

	draft := NewDraft(hotel.ID, reg.PartySize())
	for _, number := range req.Rooms {
		room := hotel.Room(number)
		if room == nil {
			return nil, apperrors.RoomNotFound(hotel.ID, number)
		}
		if err := draft.SelectRoom(room.Number, room.Beds); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(req.Beds))
	for key := range req.Beds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	placed := make(map[int]string, len(keys))
	for _, key := range keys {
		room, bed, err := ParseBedKey(key)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		person := req.Beds[key]
		if prev, ok := placed[person]; ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Person %d is placed on both %s and %s", person, prev, key))
		}
		placed[person] = key
		if err := draft.ToggleBed(room, bed, person); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

// AssignDraft commits a multi-room draft. Every selected room is occupied;
// the first becomes the primary room and the rest are recorded as secondary.
func (s *allocationService) AssignDraft(ctx context.Context, registrationID string, draft *DraftAllocation) (*Result, error) {
	if registrationID == "" {
		return nil, apperrors.InvalidInput("Registration ID cannot be empty")
	}
	if draft == nil || draft.HotelID == "" {
		return nil, apperrors.InvalidInput("Draft allocation cannot be empty")
	}
	rooms := draft.Rooms()
	if len(rooms) == 0 {
		return nil, apperrors.Validation("Draft allocation has no rooms", map[string]any{"hotel_id": draft.HotelID})
	}

	reg, unlock, err := s.lockRegistration(ctx, registrationID, draft.HotelID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := reviewservice.Eligible(reg); err != nil {
		s.cfg.Log.Warn("Draft assignment refused", "registration_id", registrationID, "error", err)
		return nil, err
	}
	if reg.IsAssigned() {
		return nil, apperrors.RegistrationNotEligible(reg.ID, fmt.Sprintf("already assigned to room %s", reg.RoomNumber))
	}
	if draft.AssignedBeds() > reg.PartySize() {
		return nil, apperrors.CapacityExceeded(draft.AssignedBeds(), reg.PartySize())
	}

	hotel, err := s.loadHotel(ctx, draft.HotelID)
	if err != nil {
		return nil, err
	}
	for key := range draft.Assignments() {
		number, bed, err := ParseBedKey(key)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		if room := hotel.Room(number); room != nil && bed >= room.Beds {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Room %s has no bed %d", number, bed))
		}
	}

	after := model.RoomAssignment{
		Status:     model.RoomAssigned,
		HotelID:    draft.HotelID,
		RoomNumber: rooms[0],
	}
	if len(rooms) > 1 {
		after.SecondaryRooms = slices.Clone(rooms[1:])
	}
	return s.commit(ctx, model.MutationDraft, reg, after)
}

func (s *allocationService) Rooms(ctx context.Context, registrationID string) (*RoomsView, error) {
	if registrationID == "" {
		return nil, apperrors.InvalidInput("Registration ID cannot be empty")
	}
	reg, err := s.loadRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	view := &RoomsView{Registration: reg, Rooms: []model.Room{}}
	if !reg.IsAssigned() {
		return view, nil
	}

	hotel, err := s.loadHotel(ctx, reg.HotelID)
	if err != nil {
		return nil, err
	}
	for _, ref := range reg.Rooms() {
		if room := hotel.Room(ref.RoomNumber); room != nil {
			view.Rooms = append(view.Rooms, *room)
		}
	}
	return view, nil
}

// commit turns the wanted assignment into room changes, checks each target
// room against the snapshot, and hands the mutation to the store.
func (s *allocationService) commit(ctx context.Context, kind model.MutationKind, reg *model.Registration, after model.RoomAssignment) (*Result, error) {
	changes, err := s.roomChanges(ctx, reg, after)
	if err != nil {
		s.cfg.Log.Warn("Allocation refused", "registration_id", reg.ID, "kind", kind, "error", err)
		return nil, err
	}

	mutation := &model.Mutation{
		ID:             uuid.NewString(),
		Kind:           kind,
		RegistrationID: reg.ID,
		RoomChanges:    changes,
		Before:         reg.RoomAssignment.Clone(),
		After:          after,
		At:             time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := s.store.Commit(ctx, mutation); err != nil {
		appErr := mapStoreError(err, reg.ID)
		if appErr.Code == apperrors.CodeInternal {
			s.cfg.Log.Error("Failed to commit allocation", "registration_id", reg.ID, "kind", kind, "error", err)
		} else {
			s.cfg.Log.Warn("Allocation commit refused", "registration_id", reg.ID, "kind", kind, "error", err)
		}
		return nil, appErr
	}

	updated := reg.Clone()
	updated.RoomAssignment = after.Clone()
	updated.UpdatedAt = mutation.At

	result := &Result{Mutation: mutation, Registration: updated}
	for _, c := range changes {
		if c.Frees() {
			result.Freed = append(result.Freed, c.Ref())
		}
		if c.Occupies() {
			result.Occupied = append(result.Occupied, c.Ref())
		}
	}

	s.cfg.Log.Info("Allocation committed",
		"mutation_id", mutation.ID,
		"kind", kind,
		"registration_id", reg.ID,
		"freed", len(result.Freed),
		"occupied", len(result.Occupied),
	)
	s.publish(ctx, events.ForMutation(mutation))
	return result, nil
}

// roomChanges diffs the rooms held now against the rooms wanted. Rooms in
// both sets are left alone, so a reassign that keeps a room never frees it.
func (s *allocationService) roomChanges(ctx context.Context, reg *model.Registration, after model.RoomAssignment) ([]model.RoomChange, error) {
	current := reg.Rooms()
	wanted := after.Rooms()

	hotels := make(map[string]*model.Hotel)
	hotelFor := func(id string) (*model.Hotel, error) {
		if h, ok := hotels[id]; ok {
			return h, nil
		}
		h, err := s.loadHotel(ctx, id)
		if err != nil {
			return nil, err
		}
		hotels[id] = h
		return h, nil
	}

	var changes []model.RoomChange
	for _, ref := range wanted {
		hotel, err := hotelFor(ref.HotelID)
		if err != nil {
			return nil, err
		}
		room := hotel.Room(ref.RoomNumber)
		if room == nil {
			return nil, apperrors.RoomNotFound(ref.HotelID, ref.RoomNumber)
		}
		if slices.Contains(current, ref) {
			continue
		}
		if room.IsOccupiedBy(reg.ID) {
			continue
		}
		if !room.IsFree() {
			return nil, apperrors.RoomUnavailable(ref.HotelID, ref.RoomNumber, room.OccupiedBy)
		}
		changes = append(changes, model.RoomChange{HotelID: ref.HotelID, RoomNumber: ref.RoomNumber, To: reg.ID})
	}

	for _, ref := range current {
		if slices.Contains(wanted, ref) {
			continue
		}
		hotel, err := hotelFor(ref.HotelID)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeHotelNotFound) {
				s.cfg.Log.Warn("Held room belongs to a missing hotel", "registration_id", reg.ID, "room", ref.String())
				continue
			}
			return nil, err
		}
		room := hotel.Room(ref.RoomNumber)
		if room == nil || !room.IsOccupiedBy(reg.ID) {
			s.cfg.Log.Warn("Held room is not occupied by registration", "registration_id", reg.ID, "room", ref.String())
			continue
		}
		changes = append(changes, model.RoomChange{HotelID: ref.HotelID, RoomNumber: ref.RoomNumber, From: reg.ID})
	}
	return changes, nil
}

// lockRegistration takes the registration key plus the keys of the hotel it
// holds rooms in and any target hotels, then re-reads the registration under
// the locks.
func (s *allocationService) lockRegistration(ctx context.Context, registrationID string, targetHotels ...string) (*model.Registration, lock.Unlock, error) {
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		seen, err := s.loadRegistration(ctx, registrationID)
		if err != nil {
			return nil, nil, err
		}

		keys := []string{lock.RegistrationKey(registrationID)}
		for _, id := range targetHotels {
			keys = append(keys, lock.HotelKey(id))
		}
		if seen.HotelID != "" {
			keys = append(keys, lock.HotelKey(seen.HotelID))
		}

		unlock, err := s.locker.Acquire(ctx, keys...)
		if err != nil {
			return nil, nil, mapLockError(err)
		}

		reg, err := s.loadRegistration(ctx, registrationID)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		if reg.HotelID == seen.HotelID {
			return reg, unlock, nil
		}
		unlock()
	}
	return nil, nil, apperrors.Conflict("Registration is being reallocated by another operator, try again")
}

func (s *allocationService) validateRef(registrationID string, ref model.RoomRef) (model.RoomRef, error) {
	if registrationID == "" {
		return ref, apperrors.InvalidInput("Registration ID cannot be empty")
	}
	ref.HotelID = sanitizer.TrimAndNormalize(ref.HotelID)
	ref.RoomNumber = sanitizer.NormalizeRoomNumber(ref.RoomNumber)
	if err := s.validator.ValidateRoomRef(ref); err != nil {
		s.cfg.Log.Warn("Room reference validation failed", "registration_id", registrationID, "error", err)
		return ref, apperrors.Validation("Room reference validation failed", map[string]any{"error": err.Error()})
	}
	return ref, nil
}

func (s *allocationService) loadRegistration(ctx context.Context, id string) (*model.Registration, error) {
	reg, err := s.store.RegistrationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return nil, apperrors.RegistrationNotFound(id)
		}
		s.cfg.Log.Error("Failed to load registration", "registration_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load registration", err)
	}
	return reg, nil
}

func (s *allocationService) loadHotel(ctx context.Context, id string) (*model.Hotel, error) {
	hotel, err := s.store.Hotel(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return nil, apperrors.HotelNotFound(id)
		}
		s.cfg.Log.Error("Failed to load hotel", "hotel_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load hotel", err)
	}
	return hotel, nil
}

func (s *allocationService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish allocation event",
			"event_id", event.ID,
			"type", event.Type,
			"registration_id", event.RegistrationID,
			"error", err,
		)
	}
}

func mapStoreError(err error, registrationID string) *apperrors.AppError {
	switch {
	case apperrors.IsAppError(err):
		return apperrors.AsAppError(err)
	case errors.Is(err, repository.ErrStaleState):
		return apperrors.Conflict("Room or registration changed while allocating, reload and try again").
			WithDetails(map[string]any{"registration_id": registrationID})
	case errors.Is(err, repository.ErrRegistrationNotFound):
		return apperrors.RegistrationNotFound(registrationID)
	case errors.Is(err, repository.ErrRoomNotFound):
		return apperrors.New(apperrors.CodeRoomNotFound, "Room no longer exists", http.StatusNotFound)
	case errors.Is(err, repository.ErrHotelNotFound):
		return apperrors.New(apperrors.CodeHotelNotFound, "Hotel no longer exists", http.StatusNotFound)
	default:
		return apperrors.Internal("Failed to commit allocation", err)
	}
}

func mapLockError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Timeout("Timed out waiting for allocation lock")
	}
	return apperrors.Internal("Failed to acquire allocation lock", err)
}
