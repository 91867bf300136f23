package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type publishForm struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(publishForm{Author: "E. Noether"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 1)
	require.Equal(t, "title", failures[0].Field)
	require.Equal(t, "required", failures[0].Tag)
}

func TestValidateStructPasses(t *testing.T) {
	require.NoError(t, ValidateStruct(publishForm{Title: "Pi Day", Author: "E. Noether"}))
}
