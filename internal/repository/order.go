package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/najugourmet/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(customer_name, customer_phone, total, notes, status, delivery_type, address, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	createOrderItemSQL = `INSERT INTO order_items
		(order_id, product_id, product_name, quantity, unit_price, subtotal, selected_flavors)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getOrderByIDSQL = `SELECT id, customer_name, customer_phone, total, notes, status,
			delivery_type, address, payment_method, created_at
		FROM orders WHERE id = $1`

	markOrderIncompleteSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	listOrderIDsSQL = `SELECT id FROM orders`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateOrder persists the order row and returns the store-assigned id. An
// empty customer name falls back to the storefront default.
func (r *OrderRepository) CreateOrder(ctx context.Context, o *order.Order) (string, error) {
	name := o.CustomerName
	if name == "" {
		name = order.DefaultCustomerName
	}

	var id string
	err := r.pool.QueryRow(ctx, createOrderSQL,
		name, o.CustomerPhone, o.Total, o.Notes, o.Status,
		o.DeliveryType, o.Address, o.PaymentMethod,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating order: %w", err)
	}

	o.ID = id
	return id, nil
}

// CreateItems persists the order's line items in one batch. Flavor names are
// serialized to the JSONB column.
func (r *OrderRepository) CreateItems(ctx context.Context, orderID string, items []order.Item) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		flavorsJSON, err := json.Marshal(item.SelectedFlavors)
		if err != nil {
			return fmt.Errorf("marshaling selected flavors: %w", err)
		}
		batch.Queue(createOrderItemSQL,
			orderID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.Subtotal, flavorsJSON,
		)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("creating items for order %q: %w", orderID, err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// MarkIncomplete flags an order whose items failed to persist.
func (r *OrderRepository) MarkIncomplete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, markOrderIncompleteSQL, id, order.StatusIncomplete); err != nil {
		return fmt.Errorf("marking order %q incomplete: %w", id, err)
	}
	return nil
}

// IDs returns every assigned order id.
func (r *OrderRepository) IDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listOrderIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing order ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		total decimal.Decimal
	)
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerPhone, &total, &o.Notes, &o.Status,
		&o.DeliveryType, &o.Address, &o.PaymentMethod, &o.CreatedAt,
	)
	o.Total = total
	return o, err
}
