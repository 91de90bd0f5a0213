package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string  `json:"name" validate:"required"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Currency string  `json:"currency" validate:"omitempty,currencycode"`
	Pin      string  `json:"pin" validate:"omitempty,pin"`
}

func TestValidate(t *testing.T) {
	v := New()

	t.Run("valid struct passes", func(t *testing.T) {
		err := v.Validate(sample{Name: "ok", Amount: 10, Currency: "MWK", Pin: "4729"})
		assert.NoError(t, err)
	})

	t.Run("errors use json field names", func(t *testing.T) {
		err := v.Validate(sample{Amount: -1})
		require.Error(t, err)

		verrs, ok := err.(ValidationErrors)
		require.True(t, ok)
		require.Len(t, verrs, 2)
		assert.Equal(t, "name", verrs[0].Field)
		assert.Equal(t, "amount", verrs[1].Field)
		assert.Contains(t, verrs[0].Message, "required")
	})

	t.Run("currency code tag", func(t *testing.T) {
		err := v.Validate(sample{Name: "x", Amount: 1, Currency: "kwacha"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "currency")
	})

	t.Run("pin tag", func(t *testing.T) {
		err := v.Validate(sample{Name: "x", Amount: 1, Pin: "12"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "4 to 8 digits")
	})
}
