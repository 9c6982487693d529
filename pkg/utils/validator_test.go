package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Name     string `json:"lecturer_name" validate:"required"`
	Hours    string `json:"hours_worked" validate:"required"`
	Optional string `json:"notes"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("passes when required fields are set", func(t *testing.T) {
		err := ValidateStruct(sampleForm{Name: "J. Smith", Hours: "10"})
		assert.NoError(t, err)
	})

	t.Run("reports missing fields by json name", func(t *testing.T) {
		err := ValidateStruct(sampleForm{Optional: "x"})
		require.Error(t, err)
		assert.Equal(t, []string{"lecturer_name", "hours_worked"}, FailedFields(err))
	})

	t.Run("non validation error has no fields", func(t *testing.T) {
		assert.Nil(t, FailedFields(assert.AnError))
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr error
	}{
		{name: "integer", input: "10", want: 10},
		{name: "decimal", input: "25.5", want: 25.5},
		{name: "surrounding blanks", input: "  7.25 ", want: 7.25},
		{name: "zero", input: "0", want: 0},
		{name: "letters", input: "abc", wantErr: ErrNotANumber},
		{name: "empty", input: "", wantErr: ErrNotANumber},
		{name: "nan", input: "NaN", wantErr: ErrNotANumber},
		{name: "infinity", input: "Inf", wantErr: ErrNotANumber},
		{name: "negative", input: "-3", wantErr: ErrNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "J. Smith", SanitizeString("J.\x00 Smith\x7f"))
	assert.Equal(t, "plain", SanitizeString("plain"))
}
