package stock

import (
	"context"

	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el libro de stock.
type TxRunner interface {
	RunStock(ctx context.Context, fn func(
		moveRepo repository.StockMoveRepository,
		productRepo repository.ProductRepository,
	) error) error
}
