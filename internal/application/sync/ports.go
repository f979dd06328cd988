package sync

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
)

// Directory es el puerto hacia el directorio de catálogo: resolución de
// clientes por email y de productos por SKU. Las lecturas devuelven nil, nil
// cuando el recurso no existe.
type Directory interface {
	FindCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error)
	// CreateCustomer es upsert-or-fetch: inserta y, ante conflicto de unicidad,
	// relee el existente. Idempotente bajo llamadas concurrentes.
	CreateCustomer(ctx context.Context, email, name string) (*entity.Customer, error)
	FindProductBySKU(ctx context.Context, sku string) (*entity.Product, error)
}

// Enrichment es el resultado del enriquecimiento de un pedido.
type Enrichment struct {
	RiskScore decimal.Decimal
	Notes     string
}

// Enricher calcula la puntuación de riesgo de un pedido antes del commit.
// Best effort: un error o timeout aquí nunca bloquea la ingesta.
type Enricher interface {
	Score(ctx context.Context, order dto.InboundOrder) (*Enrichment, error)
}

// OrderSource es el canal de ventas externo que se sondea por pedidos
// candidatos a ingesta.
type OrderSource interface {
	FetchOrders(ctx context.Context, status string, pageSize int) ([]dto.InboundOrder, error)
}

// StockLedger es el puerto hacia el libro de stock para descontar la venta de
// cada línea dentro de la transacción de commit del pedido.
type StockLedger interface {
	RecordSaleInTx(
		moveRepo repository.StockMoveRepository,
		productRepo repository.ProductRepository,
		productID string,
		quantity decimal.Decimal,
		reference, description string,
		now time.Time,
	) error
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza la atomicidad del commit: cabecera, líneas y
// movimientos de stock se confirman todos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		moveRepo repository.StockMoveRepository,
		productRepo repository.ProductRepository,
	) error) error
}
