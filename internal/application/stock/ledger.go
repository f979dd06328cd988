package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appsync "github.com/jhoicas/Pedidos-sync/internal/application/sync"
	"github.com/jhoicas/Pedidos-sync/internal/domain"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
)

// El libro de stock es el StockLedger que el pipeline usa dentro del commit.
var _ appsync.StockLedger = (*Ledger)(nil)

// Config política del libro de stock.
type Config struct {
	AllowOversell bool // false: una salida que dejaría stock negativo se rechaza
}

// Ledger mantiene el libro de stock: movimientos firmados e inmutables por
// producto. El stock actual es siempre el agregado vivo SUM(quantity) sobre el
// historial completo; no hay contador materializado que pueda divergir de la
// fuente de verdad.
type Ledger struct {
	txRunner    TxRunner
	moveRepo    repository.StockMoveRepository
	productRepo repository.ProductRepository
	cfg         Config
}

// NewLedger construye el libro de stock. moveRepo y productRepo van atados al
// pool (lecturas fuera de transacción).
func NewLedger(txRunner TxRunner, moveRepo repository.StockMoveRepository, productRepo repository.ProductRepository, cfg Config) *Ledger {
	return &Ledger{txRunner: txRunner, moveRepo: moveRepo, productRepo: productRepo, cfg: cfg}
}

// MoveInput entrada para registrar un movimiento manual.
type MoveInput struct {
	ProductID   string
	Quantity    decimal.Decimal
	Type        string
	Reference   string
	Description string
}

// RecordMove valida y persiste un movimiento dentro de una transacción.
// La fila del producto se bloquea (SELECT FOR UPDATE) para serializar los
// movimientos concurrentes del mismo producto; con oversell cerrado, una
// salida que dejaría el stock negativo devuelve ErrInsufficientStock.
func (l *Ledger) RecordMove(ctx context.Context, in MoveInput) (*entity.StockMove, error) {
	if in.ProductID == "" || !entity.ValidMoveType(in.Type) || in.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	var move *entity.StockMove
	err := l.txRunner.RunStock(ctx, func(
		moveRepo repository.StockMoveRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetByIDForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Quantity.IsNegative() && !l.cfg.AllowOversell {
			current, err := moveRepo.SumByProduct(in.ProductID)
			if err != nil {
				return err
			}
			if current.Add(in.Quantity).IsNegative() {
				return domain.ErrInsufficientStock
			}
		}
		move = &entity.StockMove{
			ID:          uuid.New().String(),
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			Type:        in.Type,
			Reference:   in.Reference,
			Description: in.Description,
			CreatedAt:   time.Now().UTC(),
		}
		return moveRepo.Create(move)
	})
	if err != nil {
		return nil, err
	}
	return move, nil
}

// RecordSaleInTx registra la salida de una venta usando los repositorios de la
// transacción del caller (el commit del pedido). Bloquea la fila del producto
// para que dos ventas simultáneas del mismo producto no lean un stock viejo y
// confirmen ambas; quantity llega positiva y se persiste negada.
func (l *Ledger) RecordSaleInTx(
	moveRepo repository.StockMoveRepository,
	productRepo repository.ProductRepository,
	productID string,
	quantity decimal.Decimal,
	reference, description string,
	now time.Time,
) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad de venta debe ser positiva", domain.ErrInvalidInput)
	}
	product, err := productRepo.GetByIDForUpdate(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if !l.cfg.AllowOversell {
		current, err := moveRepo.SumByProduct(productID)
		if err != nil {
			return err
		}
		if current.LessThan(quantity) {
			return domain.ErrInsufficientStock
		}
	}
	move := &entity.StockMove{
		ID:          uuid.New().String(),
		ProductID:   productID,
		Quantity:    quantity.Neg(),
		Type:        entity.MoveTypeSale,
		Reference:   reference,
		Description: description,
		CreatedAt:   now,
	}
	return moveRepo.Create(move)
}

// CurrentStock devuelve el stock actual del producto: la suma de todos sus
// movimientos. Consistente en todo instante porque los movimientos solo se
// insertan dentro de transacciones confirmadas.
func (l *Ledger) CurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	product, err := l.productRepo.GetByID(productID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return l.moveRepo.SumByProduct(productID)
}

// ListMoves devuelve el historial cronológico de movimientos del producto.
func (l *Ledger) ListMoves(ctx context.Context, productID string) ([]*entity.StockMove, error) {
	product, err := l.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return l.moveRepo.ListByProduct(productID)
}
