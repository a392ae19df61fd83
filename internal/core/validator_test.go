package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perilwatch/internal/types"
)

type sampleRequest struct {
	StationID string `validate:"required"`
	Peril     string `validate:"omitempty,peril"`
	Coverage  string `validate:"omitempty,coverage"`
}

func TestValidateStruct_Valid(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(sampleRequest{StationID: "st-1", Peril: "flood", Coverage: "multi_peril"})

	require.NoError(t, err)
}

func TestValidateStruct_MissingRequiredField(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(sampleRequest{Peril: "flood"})

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationMissingField, appErr.Code)
	assert.Equal(t, "StationID", appErr.Details["field"])
}

func TestValidateStruct_UnknownPeril(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(sampleRequest{StationID: "st-1", Peril: "locusts"})

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidPeril, appErr.Code)
}

func TestValidateStruct_UnknownCoverage(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(sampleRequest{StationID: "st-1", Coverage: "total"})

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidCoverage, appErr.Code)
}
