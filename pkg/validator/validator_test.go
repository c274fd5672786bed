package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type createPayload struct {
	UserID  string `json:"user_id" validate:"required,uuid4"`
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=1000"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&createPayload{})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, ve, 3)
	require.Equal(t, "user_id", ve[0].Field)
	require.Equal(t, "required", ve[0].Tag)
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(&createPayload{
		UserID:  "73c4d35e-9f9b-4a67-9c21-3f7ff2cf0a45",
		Title:   "Hearing scheduled",
		Message: "Your hearing was set for Monday.",
	})
	require.NoError(t, err)
}

func TestValidationErrorsString(t *testing.T) {
	ve := ValidationErrors{
		{Field: "title", Tag: "max", Param: "200"},
		{Field: "user_id", Tag: "required"},
	}
	require.Equal(t, "title failed on max=200; user_id failed on required", ve.Error())
	require.Equal(t, "validation failed", ValidationErrors{}.Error())
}
