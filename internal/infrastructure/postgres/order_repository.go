package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-sync/internal/domain"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con
// pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera del pedido. Traduce la violación del constraint
// único de external_id a domain.ErrDuplicate: es la garantía de idempotencia
// que cierra la carrera entre el chequeo y el commit.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (id, external_id, customer_id, status, total_amount, currency, risk_score, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	risk := decimal.NullDecimal{}
	if order.RiskScore != nil {
		risk = decimal.NullDecimal{Decimal: *order.RiskScore, Valid: true}
	}
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.ExternalID, order.CustomerID, order.Status,
		order.TotalAmount, order.Currency, risk, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateItem persiste una línea del pedido.
func (r *OrderRepo) CreateItem(item *entity.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// GetByExternalID obtiene un pedido por su clave de idempotencia; nil, nil si
// no existe.
func (r *OrderRepo) GetByExternalID(externalID string) (*entity.Order, error) {
	query := `
		SELECT id, external_id, customer_id, status, total_amount, currency, risk_score, notes, created_at, updated_at
		FROM orders WHERE external_id = $1`
	var o entity.Order
	var risk decimal.NullDecimal
	err := r.q.QueryRow(context.Background(), query, externalID).Scan(
		&o.ID, &o.ExternalID, &o.CustomerID, &o.Status,
		&o.TotalAmount, &o.Currency, &risk, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if risk.Valid {
		o.RiskScore = &risk.Decimal
	}
	return &o, nil
}

// ListItems devuelve las líneas de un pedido.
func (r *OrderRepo) ListItems(orderID string) ([]*entity.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
