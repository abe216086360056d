package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "11987654321", NormalizePhone("(11) 98765-4321"))
	assert.Equal(t, "5511987654321", NormalizePhone("+55 11 98765-4321"))
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestCheckout_Validate(t *testing.T) {
	total := decimal.RequireFromString("50.00")
	valid := Checkout{
		CustomerName:  "Maria",
		CustomerPhone: "(11) 98765-4321",
		DeliveryType:  DeliveryPickup,
		PaymentMethod: PaymentPix,
	}

	tests := []struct {
		name    string
		mutate  func(*Checkout)
		wantErr error
	}{
		{"valid pickup pix", func(c *Checkout) {}, nil},
		{"blank name", func(c *Checkout) { c.CustomerName = "   " }, ErrMissingName},
		{"short phone", func(c *Checkout) { c.CustomerPhone = "9876-5432" }, ErrInvalidPhone},
		{"delivery without address", func(c *Checkout) {
			c.DeliveryType = DeliveryDelivery
		}, ErrMissingAddress},
		{"delivery with address", func(c *Checkout) {
			c.DeliveryType = DeliveryDelivery
			c.Address = "Rua das Flores, 100"
		}, nil},
		{"cash below total", func(c *Checkout) {
			c.PaymentMethod = PaymentCash
			c.CashTendered = decimal.RequireFromString("45.00")
		}, ErrInsufficientCash},
		{"cash exact", func(c *Checkout) {
			c.PaymentMethod = PaymentCash
			c.CashTendered = decimal.RequireFromString("50.00")
		}, nil},
		{"cash not informed", func(c *Checkout) {
			c.PaymentMethod = PaymentCash
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chk := valid
			tt.mutate(&chk)
			err := chk.Validate(total)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckout_Validate_FailFastOrder(t *testing.T) {
	// Everything is wrong at once; the name error wins.
	chk := Checkout{
		CustomerPhone: "123",
		DeliveryType:  DeliveryDelivery,
		PaymentMethod: PaymentCash,
		CashTendered:  decimal.RequireFromString("1.00"),
	}
	assert.ErrorIs(t, chk.Validate(decimal.RequireFromString("50.00")), ErrMissingName)

	chk.CustomerName = "Maria"
	assert.ErrorIs(t, chk.Validate(decimal.RequireFromString("50.00")), ErrInvalidPhone)

	chk.CustomerPhone = "11987654321"
	assert.ErrorIs(t, chk.Validate(decimal.RequireFromString("50.00")), ErrMissingAddress)

	chk.Address = "Rua das Flores, 100"
	assert.ErrorIs(t, chk.Validate(decimal.RequireFromString("50.00")), ErrInsufficientCash)
}

func TestChangeFor(t *testing.T) {
	total := decimal.RequireFromString("50.00")

	status, change := ChangeFor(decimal.Zero, total)
	assert.Equal(t, CashNone, status)
	assert.True(t, change.IsZero())

	status, change = ChangeFor(decimal.RequireFromString("45.00"), total)
	assert.Equal(t, CashInsufficient, status)
	assert.Equal(t, "5.00", change.StringFixed(2))

	status, change = ChangeFor(decimal.RequireFromString("50.00"), total)
	assert.Equal(t, CashExact, status)
	assert.True(t, change.IsZero())

	status, change = ChangeFor(decimal.RequireFromString("60.00"), total)
	assert.Equal(t, CashChange, status)
	assert.Equal(t, "10.00", change.StringFixed(2))
}
