package utils

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
)

var ErrLuhnInvalid = errors.New("number fails luhn check")

// orderNumberDigits is the length of an order number without its check digit.
const orderNumberDigits = 11

// ValidateLuhn checks a decimal string whose last digit is a Luhn check digit.
func ValidateLuhn(number string) error {
	if len(number) < 2 {
		return ErrLuhnInvalid
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return ErrLuhnInvalid
		}
	}
	if checkDigit(number[:len(number)-1]) != int(number[len(number)-1]-'0') {
		return ErrLuhnInvalid
	}
	return nil
}

// LuhnDigit returns the check digit for a payload of decimal digits.
func LuhnDigit(payload string) int {
	return checkDigit(payload)
}

func checkDigit(payload string) int {
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// NewOrderNumber generates a random numeric order number with a trailing Luhn check digit.
func NewOrderNumber() domain.OrderNumber {
	var b strings.Builder
	b.Grow(orderNumberDigits + 1)
	b.WriteByte(byte('1' + rand.IntN(9)))
	for range orderNumberDigits - 1 {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	payload := b.String()
	return domain.OrderNumber(payload + strconv.Itoa(LuhnDigit(payload)))
}
