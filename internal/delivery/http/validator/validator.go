// Package validator adapts go-playground/validator to Echo's Validator interface.
package validator

import (
	domainerrors "cliptube/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// RequestValidator validates bound request structs against their validate tags.
type RequestValidator struct {
	validate *validator.Validate
}

// New creates a RequestValidator ready to be assigned to echo.Echo.Validator.
func New() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator. Validation failures surface as the
// shared validation error so the error handler renders them uniformly.
func (v *RequestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
