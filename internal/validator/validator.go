package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("holder_name", validateHolderName)

	return validator
}

// validateHolderName accepts 1 to 100 characters once surrounding whitespace
// is trimmed.
func validateHolderName(fl validator.FieldLevel) bool {
	_, err := domain.NormalizeHolderName(fl.Field().String())
	return err == nil
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "required_without":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	case "holder_name":
		return "must be between 1 and 100 characters"
	default:
		return "is invalid"
	}
}
