package model

import (
	"fmt"

	"github.com/coursehub/coursehub/internal/apperror"
)

// Currency is an ISO 4217 code. Only the currencies the payment provider
// settles in are accepted.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

// Valid reports whether the currency is one of the accepted codes.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyEUR, CurrencyUSD, CurrencyGBP:
		return true
	}
	return false
}

// Money is a currency/amount pair.
type Money struct {
	Currency Currency `json:"currency"`
	Amount   float64  `json:"amount"`
}

// NewMoney validates the currency code and the sign of the amount.
func NewMoney(currency Currency, amount float64) (Money, error) {
	if !currency.Valid() {
		return Money{}, fmt.Errorf("%w: unknown currency %q", apperror.ErrInvalidInput, currency)
	}
	if amount < 0 {
		return Money{}, fmt.Errorf("%w: amount cannot be negative", apperror.ErrInvalidInput)
	}
	return Money{Currency: currency, Amount: amount}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %.2f", m.Currency, m.Amount)
}

// ValidatePricePair enforces the course price invariants: both prices share
// one currency and the discounted price never exceeds the full price.
func ValidatePricePair(fullPrice, currentPrice Money) error {
	if !fullPrice.Currency.Valid() || !currentPrice.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency", apperror.ErrInvalidInput)
	}
	if fullPrice.Amount < 0 || currentPrice.Amount < 0 {
		return fmt.Errorf("%w: price cannot be negative", apperror.ErrInvalidInput)
	}
	if fullPrice.Currency != currentPrice.Currency {
		return fmt.Errorf("%w: current price currency must match full price currency", apperror.ErrInvalidInput)
	}
	if currentPrice.Amount > fullPrice.Amount {
		return fmt.Errorf("%w: current price cannot exceed full price", apperror.ErrInvalidInput)
	}
	return nil
}
