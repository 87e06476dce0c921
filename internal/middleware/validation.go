package middleware

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "channelpulse/internal/errors"
	"channelpulse/pkg/contracts/domain"
)

// Validator validates request contracts with struct tags. Besides the
// built-in rules it knows "frequency" and "metric".
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the analytics rules registered
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterValidation("frequency", isFrequency)
	v.RegisterValidation("metric", isMetric)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// ValidateStruct validates a struct and returns an APIError listing every
// rejected field
func (m *Validator) ValidateStruct(v interface{}) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "number", "numeric":
		return fmt.Sprintf("%s must be a number", field)
	case "frequency":
		return fmt.Sprintf("%s must be one of: daily, weekly, monthly, quarterly", field)
	case "metric":
		return fmt.Sprintf("%s must be a known metric", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// Custom validators

func isFrequency(fl validator.FieldLevel) bool {
	_, err := domain.ParseFrequency(fl.Field().String())
	return err == nil
}

func isMetric(fl validator.FieldLevel) bool {
	_, err := domain.ParseMetric(fl.Field().String())
	return err == nil
}
