package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

var bedKeyRegex = regexp.MustCompile(`^[^\s]+-\d{1,2}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
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

type AllocationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAllocationValidator(log *logger.Logger) *AllocationValidator {
	v := validator.New()

	if err := v.RegisterValidation("bed_key", validateBedKey); err != nil {
		log.Fatal("Failed to register 'bed_key' validator", "error", err)
	}

	return &AllocationValidator{
		validate: v,
		logger:   log,
	}
}

func validateBedKey(fl validator.FieldLevel) bool {
	return bedKeyRegex.MatchString(fl.Field().String())
}

func (v *AllocationValidator) ValidateRoomRef(ref model.RoomRef) error {
	return v.check(ref)
}

func (v *AllocationValidator) ValidateDraft(req *model.DraftRequest) error {
	if err := v.check(req); err != nil {
		return err
	}

	selected := make(map[string]bool, len(req.Rooms))
	for _, room := range req.Rooms {
		selected[room] = true
	}
	var errs ValidationErrors
	for key := range req.Beds {
		room := key[:strings.LastIndex(key, "-")]
		if !selected[room] {
			errs = append(errs, ValidationError{
				Field:   "Beds",
				Message: fmt.Sprintf("bed %s belongs to room %s which is not selected", key, room),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *AllocationValidator) check(s any) error {
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
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "bed_key":
			message = fmt.Sprintf("%s must look like <room>-<bed index>, got %v", err.Field(), err.Value())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
