package domain

import (
	"fmt"
	"strings"

	"github.com/govalues/decimal"
)

// MoneyScale is the minimal number of fractional digits kept by Money.
const MoneyScale = 2

// Currency is an ISO 4217 alphabetic code.
type Currency string

func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", validationf("currency %q must be a 3-letter code", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", validationf("currency %q must be a 3-letter code", code)
		}
	}
	return Currency(code), nil
}

// Money is an immutable currency-tagged decimal amount.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	cur, err := ParseCurrency(string(currency))
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount.Pad(MoneyScale), currency: cur}, nil
}

func ParseMoney(amount string, currency string) (Money, error) {
	d, err := decimal.Parse(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, validationf("amount %q: %v", amount, err)
	}
	return NewMoney(d, Currency(currency))
}

// MustMoney is ParseMoney that panics on error. Intended for constants and tests.
func MustMoney(amount string, currency string) Money {
	m, err := ParseMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney(currency Currency) Money {
	return Money{amount: decimal.Zero.Pad(MoneyScale), currency: currency}
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) Currency() Currency {
	return m.currency
}

func (m Money) sameCurrency(o Money) error {
	if m.currency != o.currency {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, o.currency)
	}
	return nil
}

func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	sum, err := m.amount.Add(o.amount)
	if err != nil {
		return Money{}, validationf("add %s to %s: %v", o, m, err)
	}
	return Money{amount: sum, currency: m.currency}, nil
}

func (m Money) Sub(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	diff, err := m.amount.Sub(o.amount)
	if err != nil {
		return Money{}, validationf("subtract %s from %s: %v", o, m, err)
	}
	return Money{amount: diff, currency: m.currency}, nil
}

// Mul multiplies by a whole quantity.
func (m Money) Mul(quantity int) (Money, error) {
	q, err := decimal.New(int64(quantity), 0)
	if err != nil {
		return Money{}, validationf("quantity %d: %v", quantity, err)
	}
	product, err := m.amount.Mul(q)
	if err != nil {
		return Money{}, validationf("multiply %s by %d: %v", m, quantity, err)
	}
	return Money{amount: product, currency: m.currency}, nil
}

// Cmp returns -1, 0 or +1 like decimal.Decimal.Cmp.
func (m Money) Cmp(o Money) (int, error) {
	if err := m.sameCurrency(o); err != nil {
		return 0, err
	}
	return m.amount.Cmp(o.amount), nil
}

// Equal reports whether both values have the same currency and numerically equal amounts.
func (m Money) Equal(o Money) bool {
	return m.currency == o.currency && m.amount.Cmp(o.amount) == 0
}

func (m Money) IsZero() bool { return m.amount.IsZero() }
func (m Money) IsNeg() bool  { return m.amount.IsNeg() }
func (m Money) IsPos() bool  { return m.amount.IsPos() }

// Round returns the value rounded for display.
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(MoneyScale).Pad(MoneyScale), currency: m.currency}
}

func (m Money) String() string {
	return m.amount.String() + " " + string(m.currency)
}

// clampZero replaces a negative amount with zero of the same currency.
func (m Money) clampZero() Money {
	if m.amount.IsNeg() {
		return ZeroMoney(m.currency)
	}
	return m
}
