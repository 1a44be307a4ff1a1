package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/skincare/internal/common"
)

type newSession struct {
	UID  string `json:"uid" validate:"required"`
	Name string `json:"session_name" validate:"notblank,max=10" msg:"Session name cannot be empty."`
}

type plain struct {
	Kind string `validate:"eq=image/jpeg"`
}

func TestNew_RegistersNotBlank(t *testing.T) {
	var v *Validator
	require.NotPanics(t, func() { v = New() })

	assert.NoError(t, v.validate.Var("x", "notblank"))
	assert.Error(t, v.validate.Var(" \t", "notblank"))
}

func TestStruct_OK(t *testing.T) {
	require.NoError(t, New().Struct(newSession{UID: "u", Name: " Morning "}))
}

func TestStruct_BlankUsesCustomMessage(t *testing.T) {
	err := New().Struct(&newSession{UID: "u", Name: "   "})
	require.ErrorIs(t, err, common.ErrValidation)

	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "session_name", ve.Field)
	assert.Equal(t, "Session name cannot be empty.", ve.Message)
}

func TestStruct_RequiredDefaultMessage(t *testing.T) {
	err := New().Struct(newSession{Name: "x"})
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "uid", ve.Field)
	assert.Equal(t, "uid is required", ve.Message)
}

func TestStruct_FieldNameFallsBackToLowercase(t *testing.T) {
	err := New().Struct(plain{Kind: "image/png"})
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "kind", ve.Field)
	assert.Equal(t, "kind must be image/jpeg", ve.Message)
}

func TestStruct_NonStructIsNotAValidationError(t *testing.T) {
	err := New().Struct(42)
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrValidation))
}
