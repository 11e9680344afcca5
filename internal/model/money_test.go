package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehub/coursehub/internal/apperror"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(CurrencyEUR, 14.5)
	require.NoError(t, err)
	assert.Equal(t, "EUR 14.50", m.String())

	_, err = NewMoney("XYZ", 10)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = NewMoney(CurrencyUSD, -1)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestValidatePricePair(t *testing.T) {
	full := Money{Currency: CurrencyEUR, Amount: 30}
	current := Money{Currency: CurrencyEUR, Amount: 20}
	assert.NoError(t, ValidatePricePair(full, current))

	// Free courses are legitimate.
	assert.NoError(t, ValidatePricePair(Money{Currency: CurrencyEUR}, Money{Currency: CurrencyEUR}))

	mismatched := Money{Currency: CurrencyUSD, Amount: 20}
	assert.ErrorIs(t, ValidatePricePair(full, mismatched), apperror.ErrInvalidInput)

	above := Money{Currency: CurrencyEUR, Amount: 40}
	assert.ErrorIs(t, ValidatePricePair(full, above), apperror.ErrInvalidInput)

	negative := Money{Currency: CurrencyEUR, Amount: -5}
	assert.ErrorIs(t, ValidatePricePair(full, negative), apperror.ErrInvalidInput)

	unknown := Money{Currency: "XYZ", Amount: 20}
	assert.ErrorIs(t, ValidatePricePair(full, unknown), apperror.ErrInvalidInput)
}
