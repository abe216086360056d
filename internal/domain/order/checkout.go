package order

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Checkout validation errors. Each is a distinct user-visible rejection.
var (
	ErrMissingName      = errors.New("customer name is required")
	ErrInvalidPhone     = errors.New("customer phone must have at least 10 digits")
	ErrMissingAddress   = errors.New("delivery address is required")
	ErrInsufficientCash = errors.New("cash amount is less than the order total")
)

// minPhoneDigits is the minimum accepted phone length after stripping
// formatting (DDD + number).
const minPhoneDigits = 10

// Checkout carries the customer and fulfillment choices made at checkout.
type Checkout struct {
	CustomerName  string
	CustomerPhone string
	DeliveryType  DeliveryType
	Address       string
	PaymentMethod PaymentMethod
	// CashTendered is the amount the customer will hand over; only meaningful
	// for PaymentCash.
	CashTendered decimal.Decimal
}

// NormalizePhone strips everything but digits from a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks the checkout data against the final total, fail-fast in
// presentation order: name, phone, address, cash.
func (c Checkout) Validate(finalTotal decimal.Decimal) error {
	if strings.TrimSpace(c.CustomerName) == "" {
		return ErrMissingName
	}
	if len(NormalizePhone(c.CustomerPhone)) < minPhoneDigits {
		return ErrInvalidPhone
	}
	if c.DeliveryType == DeliveryDelivery && strings.TrimSpace(c.Address) == "" {
		return ErrMissingAddress
	}
	if c.PaymentMethod == PaymentCash {
		if status, _ := ChangeFor(c.CashTendered, finalTotal); status == CashInsufficient {
			return ErrInsufficientCash
		}
	}
	return nil
}

// CashStatus classifies the tendered cash against the final total.
type CashStatus string

const (
	// CashNone means no cash amount was informed.
	CashNone CashStatus = "none"
	// CashInsufficient blocks submission.
	CashInsufficient CashStatus = "insufficient"
	// CashExact means no change is due.
	CashExact CashStatus = "exact"
	// CashChange means change is due; the amount is displayed, not stored
	// beyond the order notes.
	CashChange CashStatus = "change"
)

// ChangeFor computes the cash status and the change magnitude for the given
// tendered amount and final total.
func ChangeFor(tendered, finalTotal decimal.Decimal) (CashStatus, decimal.Decimal) {
	if tendered.IsZero() {
		return CashNone, decimal.Zero
	}
	change := tendered.Sub(finalTotal)
	switch {
	case change.IsNegative():
		return CashInsufficient, change.Abs()
	case change.IsZero():
		return CashExact, decimal.Zero
	default:
		return CashChange, change
	}
}
