package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vinaythakkar13/yatra-sub001/internal/events"
	"github.com/vinaythakkar13/yatra-sub001/internal/repository"
	"github.com/vinaythakkar13/yatra-sub001/internal/review/validator"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
	"github.com/vinaythakkar13/yatra-sub001/pkg/sanitizer"
)

type ReviewService interface {
	Approve(ctx context.Context, registrationID string) (*model.Registration, error)
	Reject(ctx context.Context, registrationID, reason string) (*model.Registration, error)
	// Cancel is the external terminal override. It is fed by the cancellation
	// intake, not by reviewers.
	Cancel(ctx context.Context, registrationID, reason string) (*model.Registration, error)
	ListByTrip(ctx context.Context, tripID string) ([]*model.Registration, error)
}

type reviewService struct {
	store     repository.RegistrationStore
	publisher events.Publisher
	validator *validator.ReviewValidator
	cfg       *config.Config
}

func NewReviewService(
	store repository.RegistrationStore,
	publisher events.Publisher,
	validator *validator.ReviewValidator,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		store:     store,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

// Eligible is the allocation gate. Only a cancelled registration is refused;
// rejected documents do not block lodging.
func Eligible(reg *model.Registration) error {
	if reg.IsCancelled() {
		return apperrors.RegistrationNotEligible(reg.ID, "registration is cancelled")
	}
	return nil
}

// Approve accepts the documents from any state except cancelled and clears
// a previous rejection reason.
func (s *reviewService) Approve(ctx context.Context, registrationID string) (*model.Registration, error) {
	if registrationID == "" {
		return nil, apperrors.InvalidInput("Registration ID cannot be empty")
	}

	reg, err := s.load(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.IsCancelled() {
		return nil, s.refuse("Approve", apperrors.RegistrationNotEligible(reg.ID, "registration is cancelled"))
	}
	if reg.DocumentStatus == model.DocumentsApproved {
		return reg, nil
	}

	return s.apply(ctx, &model.ReviewChange{
		RegistrationID: reg.ID,
		From:           reg.DocumentStatus,
		To:             model.DocumentsApproved,
	})
}

// Reject checks the reason before touching the store.
func (s *reviewService) Reject(ctx context.Context, registrationID, reason string) (*model.Registration, error) {
	req := &model.RejectRequest{Reason: sanitizer.NormalizeReason(reason)}
	if err := s.checkReason(s.validator.ValidateReject(req)); err != nil {
		return nil, s.refuse("Reject", err)
	}
	if registrationID == "" {
		return nil, apperrors.InvalidInput("Registration ID cannot be empty")
	}

	reg, err := s.load(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.IsCancelled() {
		return nil, s.refuse("Reject", apperrors.RegistrationNotEligible(reg.ID, "registration is cancelled"))
	}

	return s.apply(ctx, &model.ReviewChange{
		RegistrationID:  reg.ID,
		From:            reg.DocumentStatus,
		To:              model.DocumentsRejected,
		RejectionReason: req.Reason,
	})
}

func (s *reviewService) Cancel(ctx context.Context, registrationID, reason string) (*model.Registration, error) {
	req := &model.CancelRequest{Reason: sanitizer.NormalizeReason(reason)}
	if err := s.checkReason(s.validator.ValidateCancel(req)); err != nil {
		return nil, s.refuse("Cancel", err)
	}
	if registrationID == "" {
		return nil, apperrors.InvalidInput("Registration ID cannot be empty")
	}

	reg, err := s.load(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.IsCancelled() {
		return reg, nil
	}

	return s.apply(ctx, &model.ReviewChange{
		RegistrationID:     reg.ID,
		From:               reg.DocumentStatus,
		To:                 model.DocumentsCancelled,
		CancellationReason: req.Reason,
	})
}

func (s *reviewService) ListByTrip(ctx context.Context, tripID string) ([]*model.Registration, error) {
	if tripID == "" {
		return nil, apperrors.InvalidInput("Trip ID cannot be empty")
	}
	regs, err := s.store.RegistrationsByTrip(ctx, tripID)
	if err != nil {
		s.cfg.Log.Error("Failed to list registrations", "trip_id", tripID, "error", err)
		return nil, apperrors.Internal("Failed to list registrations", err)
	}
	if regs == nil {
		regs = []*model.Registration{}
	}
	return regs, nil
}

func (s *reviewService) apply(ctx context.Context, change *model.ReviewChange) (*model.Registration, error) {
	change.At = time.Now().UTC().Truncate(time.Millisecond)

	reg, err := s.store.ApplyReview(ctx, change)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRegistrationNotFound):
			return nil, apperrors.RegistrationNotFound(change.RegistrationID)
		case errors.Is(err, repository.ErrStaleState):
			s.cfg.Log.Warn("Review raced with another change", "registration_id", change.RegistrationID, "to", change.To)
			return nil, apperrors.Conflict(fmt.Sprintf("Document status changed from %s while reviewing, reload and try again", change.From))
		default:
			s.cfg.Log.Error("Failed to apply review", "registration_id", change.RegistrationID, "error", err)
			return nil, apperrors.Internal("Failed to update document status", err)
		}
	}

	s.cfg.Log.Info("Document status changed",
		"registration_id", change.RegistrationID,
		"from", change.From,
		"to", change.To,
	)
	event := events.ForReview(change)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish review event", "event_id", event.ID, "type", event.Type, "error", err)
	}
	return reg, nil
}

func (s *reviewService) load(ctx context.Context, id string) (*model.Registration, error) {
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

func (s *reviewService) checkReason(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && verrs.HasTag("Reason", "required") {
		return apperrors.ReasonRequired()
	}
	return apperrors.Validation("Reason validation failed", map[string]any{"error": err.Error()})
}

func (s *reviewService) refuse(op string, err error) error {
	s.cfg.Log.Warn(op+" refused", "error", err)
	return err
}
