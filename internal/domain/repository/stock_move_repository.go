package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
)

// StockMoveRepository define el puerto del libro de stock.
// El libro es append-only: solo inserción y lectura, nunca update ni delete.
type StockMoveRepository interface {
	Create(move *entity.StockMove) error
	// SumByProduct agrega la cantidad de todos los movimientos del producto.
	SumByProduct(productID string) (decimal.Decimal, error)
	// ListByProduct devuelve los movimientos en orden cronológico.
	ListByProduct(productID string) ([]*entity.StockMove, error)
}
