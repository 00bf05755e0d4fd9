package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	tag     string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// HasTag reports whether any field failed the given validation tag.
func (v ValidationErrors) HasTag(field, tag string) bool {
	for _, err := range v {
		if err.Field == field && err.tag == tag {
			return true
		}
	}
	return false
}

type ReviewValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReviewValidator(log *logger.Logger) *ReviewValidator {
	return &ReviewValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *ReviewValidator) ValidateReject(req *model.RejectRequest) error {
	return v.check(req)
}

func (v *ReviewValidator) ValidateCancel(req *model.CancelRequest) error {
	return v.check(req)
}

func (v *ReviewValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
			tag:     err.Tag(),
		})
	}

	return validationErrors
}
