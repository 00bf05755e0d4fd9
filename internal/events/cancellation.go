package events

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
	"github.com/vinaythakkar13/yatra-sub001/pkg/kafka"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

const RegistrationCancelled = "registration.cancelled"

// CancellationMessage is the payload the registration system publishes when
// a pilgrim group withdraws.
type CancellationMessage struct {
	RegistrationID string    `json:"registration_id"`
	Reason         string    `json:"reason"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

type Canceller interface {
	Cancel(ctx context.Context, registrationID, reason string) (*model.Registration, error)
}

// ReleaseFunc frees every room a registration holds.
type ReleaseFunc func(ctx context.Context, registrationID string) error

type CancellationHandler struct {
	canceller Canceller
	release   ReleaseFunc
	log       *logger.Logger
}

func NewCancellationHandler(canceller Canceller, release ReleaseFunc, log *logger.Logger) *CancellationHandler {
	return &CancellationHandler{
		canceller: canceller,
		release:   release,
		log:       log.Component("cancellation_intake"),
	}
}

// Handle cancels the documents first and then releases the rooms. Both
// steps are idempotent, so a redelivered or retried message converges.
func (h *CancellationHandler) Handle(ctx context.Context, msg kafka.Message) error {
	if t := msg.GetEventType(); t != "" && t != RegistrationCancelled {
		h.log.Debug("Ignoring message", "event_type", t, "event_id", msg.GetEventID())
		return nil
	}

	var payload CancellationMessage
	if err := msg.DecodeValue(&payload); err != nil {
		return kafka.NewPermanentError("decode cancellation", err)
	}
	payload.RegistrationID = strings.TrimSpace(payload.RegistrationID)
	if payload.RegistrationID == "" {
		return kafka.NewPermanentError("cancellation without registration id", nil)
	}

	if _, err := h.canceller.Cancel(ctx, payload.RegistrationID, payload.Reason); err != nil {
		return classify("cancel registration", err)
	}
	if err := h.release(ctx, payload.RegistrationID); err != nil {
		return classify("release rooms", err)
	}

	h.log.Info("Cancellation applied",
		"registration_id", payload.RegistrationID,
		"event_id", msg.GetEventID(),
	)
	return nil
}

// classify turns service errors into retry decisions. Lock contention,
// stale reads and infrastructure failures are retried; anything the caller
// got wrong is not.
func classify(op string, err error) error {
	appErr := apperrors.AsAppError(err)
	switch {
	case appErr.Code == apperrors.CodeConflict,
		appErr.Code == apperrors.CodeTimeout,
		appErr.StatusCode() >= http.StatusInternalServerError:
		return kafka.NewTransientError(op, err)
	default:
		return kafka.NewPermanentError(op, err)
	}
}
