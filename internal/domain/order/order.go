// Package order implements the order submission pipeline and the persisted
// order model: checkout validation, total computation, the two-phase write to
// the store, and the status progression observed by the tracker.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// DefaultCustomerName is persisted when a submission carries no customer name.
const DefaultCustomerName = "Cliente via Cardápio"

// DeliveryType selects between counter pickup and home delivery.
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
)

// PaymentMethod is how the customer intends to pay. No settlement happens
// here; the value is relayed to the store.
type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "pix"
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// Order is the persisted order row. The store assigns the ID.
type Order struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	Total         decimal.Decimal
	Notes         string
	Status        Status
	DeliveryType  DeliveryType
	Address       string
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
}

// Item is one persisted order line, derived from a cart line item.
type Item struct {
	ProductID       string
	ProductName     string
	Quantity        int
	UnitPrice       decimal.Decimal
	Subtotal        decimal.Decimal
	SelectedFlavors []string
}

// Repository defines persistence operations for orders. CreateOrder and
// CreateItems are deliberately separate calls: the write is two-phase, not
// transactional, and the pipeline owns the partial-failure handling.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) (id string, err error)
	CreateItems(ctx context.Context, orderID string, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, error)
	MarkIncomplete(ctx context.Context, id string) error
	IDs(ctx context.Context) ([]string, error)
}
