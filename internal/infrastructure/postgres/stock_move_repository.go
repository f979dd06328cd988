package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
)

var _ repository.StockMoveRepository = (*StockMoveRepo)(nil)

// StockMoveRepo implementación del libro de stock sobre PostgreSQL (usable con
// pool o tx). La tabla stock_moves es append-only: este adaptador no expone
// update ni delete.
type StockMoveRepo struct {
	q Querier
}

// NewStockMoveRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMoveRepository(q Querier) *StockMoveRepo {
	return &StockMoveRepo{q: q}
}

// Create agrega un movimiento al libro.
func (r *StockMoveRepo) Create(move *entity.StockMove) error {
	query := `
		INSERT INTO stock_moves (id, product_id, quantity, type, reference, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		move.ID, move.ProductID, move.Quantity, move.Type,
		move.Reference, move.Description, move.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock move: %w", err)
	}
	return nil
}

// SumByProduct agrega la cantidad de todos los movimientos del producto.
// Es la derivación del stock actual desde la fuente de verdad completa.
func (r *StockMoveRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_moves WHERE product_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, productID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum stock moves: %w", err)
	}
	return sum, nil
}

// ListByProduct devuelve los movimientos del producto en orden cronológico.
func (r *StockMoveRepo) ListByProduct(productID string) ([]*entity.StockMove, error) {
	query := `
		SELECT id, product_id, quantity, type, reference, description, created_at
		FROM stock_moves WHERE product_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock moves: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMove
	for rows.Next() {
		var m entity.StockMove
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Quantity, &m.Type, &m.Reference, &m.Description, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock move: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
