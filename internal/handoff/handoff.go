// Package handoff formats the WhatsApp hand-off for a submitted order: the
// structured payload, the receipt-style message, and the deep link that opens
// the conversation with the store.
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Delivery and payment values as they appear in the payload. They mirror the
// order domain's enums; this package only formats them.
const (
	DeliveryPickup   = "pickup"
	DeliveryDelivery = "delivery"

	PaymentPix  = "pix"
	PaymentCard = "card"
	PaymentCash = "cash"
)

// FlavorGroup is the selections of one category on a line, grouped for
// display ("Topping: Nutella, Granola").
type FlavorGroup struct {
	Category string
	Flavors  []string
}

// Line is one itemized entry of the hand-off message.
type Line struct {
	Name     string
	Quantity int
	Flavors  []FlavorGroup
	Subtotal decimal.Decimal
}

// Payload is the data handed to the messaging channel. OrderID is empty when
// persistence failed; the message goes out anyway.
type Payload struct {
	OrderID       string
	CustomerName  string
	CustomerPhone string
	DeliveryType  string
	Address       string
	PaymentMethod string
	CashTendered  decimal.Decimal
	// ChangeDue is positive when change is owed, zero otherwise.
	ChangeDue   decimal.Decimal
	Lines       []Line
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Builder formats payloads into WhatsApp messages for a configured store
// number and title.
type Builder struct {
	number     string
	storeTitle string
}

// NewBuilder creates a Builder for the given WhatsApp number (international
// format, digits only) and store title.
func NewBuilder(number, storeTitle string) *Builder {
	return &Builder{number: number, storeTitle: storeTitle}
}

// Link returns the api.whatsapp.com deep link carrying the formatted message.
func (b *Builder) Link(p Payload) string {
	return fmt.Sprintf("https://api.whatsapp.com/send?phone=%s&text=%s",
		b.number, url.QueryEscape(b.Message(p)))
}

// Message renders the hand-off text. Formatting mirrors the store's printed
// receipt: header, customer block, itemized list with grouped selections,
// totals.
func (b *Builder) Message(p Payload) string {
	var sb strings.Builder

	sb.WriteString("━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&sb, "       *%s*\n", b.storeTitle)
	sb.WriteString("━━━━━━━━━━━━━━━━━━━━\n\n")

	if p.OrderID != "" {
		fmt.Fprintf(&sb, "*PEDIDO #%s*\n\n", ShortID(p.OrderID))
	}

	fmt.Fprintf(&sb, "*CLIENTE:* %s\n", p.CustomerName)
	fmt.Fprintf(&sb, "*TELEFONE:* %s\n", p.CustomerPhone)
	fmt.Fprintf(&sb, "*ENTREGA:* %s\n", deliveryLabel(p.DeliveryType))
	if p.DeliveryType == DeliveryDelivery && p.Address != "" {
		fmt.Fprintf(&sb, "*ENDEREÇO:* %s\n", p.Address)
	}
	fmt.Fprintf(&sb, "*PAGAMENTO:* %s\n", paymentLabel(p.PaymentMethod))
	if p.PaymentMethod == PaymentCash && p.CashTendered.IsPositive() {
		fmt.Fprintf(&sb, "*VALOR EM MÃOS:* %s\n", money(p.CashTendered))
		if p.ChangeDue.IsPositive() {
			fmt.Fprintf(&sb, "*TROCO:* %s\n", money(p.ChangeDue))
		} else {
			sb.WriteString("*TROCO:* Não precisa\n")
		}
	}

	sb.WriteString("\n*ITENS DO PEDIDO:*\n")
	sb.WriteString("─────────────────────\n\n")

	for i, line := range p.Lines {
		fmt.Fprintf(&sb, "*%d. %s*\n", i+1, line.Name)
		fmt.Fprintf(&sb, "   Qtd: %dx\n", line.Quantity)
		for _, g := range line.Flavors {
			fmt.Fprintf(&sb, "   %s: _%s_\n", g.Category, strings.Join(g.Flavors, ", "))
		}
		fmt.Fprintf(&sb, "   *Subtotal: %s*\n\n", money(line.Subtotal))
	}

	sb.WriteString("─────────────────────\n")
	if p.DeliveryFee.IsPositive() {
		fmt.Fprintf(&sb, "*Subtotal:* %s\n", money(p.Subtotal))
		fmt.Fprintf(&sb, "*Taxa de entrega:* %s\n", money(p.DeliveryFee))
	}
	fmt.Fprintf(&sb, "*TOTAL: %s*\n", money(p.Total))
	sb.WriteString("─────────────────────\n\n")
	sb.WriteString("Aguardo a confirmação!\nObrigado pela preferência!")

	return sb.String()
}

// ShortID truncates a store-assigned id to its first 8 characters, uppercased,
// matching what the tracker shows the customer.
func ShortID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// money formats a decimal as Brazilian currency ("R$ 27,00").
func money(d decimal.Decimal) string {
	return "R$ " + strings.ReplaceAll(d.StringFixed(2), ".", ",")
}

func deliveryLabel(t string) string {
	if t == DeliveryDelivery {
		return "Delivery"
	}
	return "Retirada"
}

func paymentLabel(m string) string {
	switch m {
	case PaymentPix:
		return "PIX"
	case PaymentCard:
		return "Cartão (Aproximação)"
	default:
		return "Dinheiro"
	}
}
