package core

import (
	"github.com/go-playground/validator/v10"

	"perilwatch/internal/types"
)

// Validator wraps go-playground/validator with the domain rules used by
// request DTOs: "peril" and "coverage" validate the platform enums.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator with the custom tags registered.
func NewValidator() *Validator {
	v := validator.New()

	// Registration only fails for empty tag names, which these are not.
	_ = v.RegisterValidation("peril", func(fl validator.FieldLevel) bool {
		return types.PerilType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("coverage", func(fl validator.FieldLevel) bool {
		return types.CoverageType(fl.Field().String()).IsValid()
	})

	return &Validator{validate: v}
}

// ValidateStruct checks dst against its validate tags and converts the first
// failure into a client-facing AppError naming the offending field.
func (v *Validator) ValidateStruct(dst interface{}) error {
	err := v.validate.Struct(dst)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "request validation failed", err)
	}

	first := validationErrs[0]
	code := types.ErrCodeValidationMissingField
	switch first.Tag() {
	case "peril":
		code = types.ErrCodeValidationInvalidPeril
	case "coverage":
		code = types.ErrCodeValidationInvalidCoverage
	}

	return types.NewAppErrorWithDetails(
		code,
		"invalid request field",
		nil,
		map[string]any{
			"field": first.Field(),
			"rule":  first.Tag(),
		},
	)
}
