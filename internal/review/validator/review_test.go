package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

func TestValidateReject(t *testing.T) {
	v := NewReviewValidator(logger.Discard())

	if err := v.ValidateReject(&model.RejectRequest{Reason: "blurry ticket"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := v.ValidateReject(&model.RejectRequest{})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if !verrs.HasTag("Reason", "required") {
		t.Errorf("expected required failure on Reason, got %v", verrs)
	}

	err = v.ValidateReject(&model.RejectRequest{Reason: strings.Repeat("x", 501)})
	if !errors.As(err, &verrs) || !verrs.HasTag("Reason", "max") {
		t.Errorf("expected max failure on Reason, got %v", err)
	}
}

func TestValidateCancel(t *testing.T) {
	v := NewReviewValidator(logger.Discard())

	if err := v.ValidateCancel(&model.CancelRequest{Reason: "train cancelled"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.ValidateCancel(&model.CancelRequest{}); err == nil {
		t.Errorf("expected error for blank cancellation reason")
	}
}
