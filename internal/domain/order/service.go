package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/najugourmet/storefront/internal/domain/cart"
	"github.com/najugourmet/storefront/internal/handoff"
)

// Submission flow errors surfaced to the caller before any write happens.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
)

// IDRecorder is notified of every order id the store assigns. The tracker
// uses it to keep its known-id filter current.
type IDRecorder interface {
	Remember(id string)
}

// Result is the outcome of a submission. Submitted is false when persistence
// failed; the hand-off payload is produced either way, because the
// customer-facing promise (hand the order to the store via messaging) must
// not be blocked by a backend failure.
type Result struct {
	OrderID    string
	Submitted  bool
	FinalTotal decimal.Decimal
	CashStatus CashStatus
	Change     decimal.Decimal
	Handoff    handoff.Payload
}

// Service runs the order submission pipeline: validate checkout data, compute
// the final total, write the order in two phases, record the session's last
// order, and build the messaging hand-off.
type Service struct {
	orders      Repository
	sessions    *cart.Store
	recorder    IDRecorder
	deliveryFee decimal.Decimal
}

// NewService creates a Service. recorder may be nil.
func NewService(orders Repository, sessions *cart.Store, recorder IDRecorder, deliveryFee decimal.Decimal) *Service {
	return &Service{
		orders:      orders,
		sessions:    sessions,
		recorder:    recorder,
		deliveryFee: deliveryFee,
	}
}

// DeliveryFee returns the fixed surcharge applied to delivery orders.
func (s *Service) DeliveryFee() decimal.Decimal {
	return s.deliveryFee
}

// Submit runs the pipeline for the session's cart. Validation failures return
// an error before any write. After validation, the pipeline always completes:
// persistence failures degrade the result (no order id) instead of failing
// it, the cart is cleared either way, and the hand-off payload is returned so
// the messaging step always fires.
func (s *Service) Submit(ctx context.Context, sessionID string, chk Checkout) (*Result, error) {
	if !s.sessions.TryBeginSubmit(sessionID) {
		return nil, ErrSubmissionInFlight
	}
	defer s.sessions.EndSubmit(sessionID)

	c := s.sessions.Cart(sessionID)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	fee := decimal.Zero
	if chk.DeliveryType == DeliveryDelivery {
		fee = s.deliveryFee
	}
	finalTotal := c.TotalPrice().Add(fee)

	if err := chk.Validate(finalTotal); err != nil {
		return nil, err
	}

	cashStatus, change := ChangeFor(chk.CashTendered, finalTotal)

	res := &Result{
		FinalTotal: finalTotal,
		CashStatus: cashStatus,
		Change:     change,
	}

	orderID, err := s.persist(ctx, c, chk, finalTotal)
	if err != nil {
		// Availability over consistency: log and carry on without an id.
		zctx.From(ctx).Error("order submission degraded",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	} else {
		res.OrderID = orderID
		res.Submitted = true
		s.sessions.SetLastOrderID(sessionID, orderID)
		if s.recorder != nil {
			s.recorder.Remember(orderID)
		}
	}

	res.Handoff = s.buildHandoff(res.OrderID, c, chk, fee, finalTotal, change)
	s.sessions.Update(sessionID, cart.Cart.Clear)

	return res, nil
}

// persist performs the two-phase write: the order row first, then its items.
// A failed order write fails the whole phase. A failed items write leaves the
// order in place, marked incomplete for operator reconciliation.
func (s *Service) persist(ctx context.Context, c cart.Cart, chk Checkout, finalTotal decimal.Decimal) (string, error) {
	o := &Order{
		CustomerName:  chk.CustomerName,
		CustomerPhone: NormalizePhone(chk.CustomerPhone),
		Total:         finalTotal,
		Notes:         cashNotes(chk),
		Status:        StatusPending,
		DeliveryType:  chk.DeliveryType,
		Address:       chk.Address,
		PaymentMethod: chk.PaymentMethod,
	}

	orderID, err := s.orders.CreateOrder(ctx, o)
	if err != nil {
		return "", errors.Wrap(err, "create order")
	}

	items := make([]Item, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, Item{
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			Subtotal:        line.TotalPrice,
			SelectedFlavors: flavorNames(line),
		})
	}

	if err := s.orders.CreateItems(ctx, orderID, items); err != nil {
		zctx.From(ctx).Error("order items write failed, marking order incomplete",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		if markErr := s.orders.MarkIncomplete(ctx, orderID); markErr != nil {
			zctx.From(ctx).Error("mark incomplete failed",
				zap.String("order_id", orderID),
				zap.Error(markErr),
			)
		}
	}

	return orderID, nil
}

func (s *Service) buildHandoff(orderID string, c cart.Cart, chk Checkout, fee, finalTotal, change decimal.Decimal) handoff.Payload {
	lines := make([]handoff.Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, handoff.Line{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Flavors:  groupSelections(item),
			Subtotal: item.TotalPrice,
		})
	}

	return handoff.Payload{
		OrderID:       orderID,
		CustomerName:  chk.CustomerName,
		CustomerPhone: NormalizePhone(chk.CustomerPhone),
		DeliveryType:  string(chk.DeliveryType),
		Address:       chk.Address,
		PaymentMethod: string(chk.PaymentMethod),
		CashTendered:  chk.CashTendered,
		ChangeDue:     change,
		Lines:         lines,
		Subtotal:      c.TotalPrice(),
		DeliveryFee:   fee,
		Total:         finalTotal,
	}
}

// groupSelections groups a line's selections by category, preserving the
// order in which categories first appear.
func groupSelections(item cart.LineItem) []handoff.FlavorGroup {
	var groups []handoff.FlavorGroup
	index := make(map[string]int)
	for _, sel := range item.Selections {
		i, ok := index[sel.CategoryName]
		if !ok {
			i = len(groups)
			index[sel.CategoryName] = i
			groups = append(groups, handoff.FlavorGroup{Category: sel.CategoryName})
		}
		groups[i].Flavors = append(groups[i].Flavors, sel.FlavorName)
	}
	return groups
}

// flavorNames flattens a line's selections to the flavor names persisted with
// the order item, or nil when the line has none.
func flavorNames(line cart.LineItem) []string {
	if len(line.Selections) == 0 {
		return nil
	}
	names := make([]string, len(line.Selections))
	for i, sel := range line.Selections {
		names[i] = sel.FlavorName
	}
	return names
}

// cashNotes renders the order notes for cash payments ("Troco para R$ …").
func cashNotes(chk Checkout) string {
	if chk.PaymentMethod != PaymentCash || !chk.CashTendered.IsPositive() {
		return ""
	}
	return "Troco para R$ " + strings.ReplaceAll(chk.CashTendered.StringFixed(2), ".", ",")
}
