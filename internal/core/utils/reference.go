package utils

import (
	"strings"

	"github.com/google/uuid"
)

const paymentReferencePrefix = "PAY-"

// NewPaymentReference returns a unique, human-quotable payment reference.
func NewPaymentReference() string {
	return paymentReferencePrefix + strings.ToUpper(uuid.NewString())
}
