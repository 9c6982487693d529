package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyFormatter(t *testing.T) {
	t.Run("formats with symbol and two decimals", func(t *testing.T) {
		f, err := NewMoneyFormatter("USD", "en")
		require.NoError(t, err)

		assert.Equal(t, "$ 255.00", f.Format(255))
		assert.Equal(t, "$ 4.00", f.Format(4))
		assert.Equal(t, "USD", f.Code())
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		_, err := NewMoneyFormatter("XYZW", "en")
		assert.Error(t, err)
	})

	t.Run("rejects malformed locale", func(t *testing.T) {
		_, err := NewMoneyFormatter("USD", "not a locale!")
		assert.Error(t, err)
	})
}
