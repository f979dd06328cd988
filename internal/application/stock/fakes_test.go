package stock_test

import (
	"context"
	stdsync "sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
)

// Almacén mínimo en memoria para el libro de stock. RunStock serializa las
// transacciones, igual que el bloqueo de fila serializa los movimientos del
// mismo producto en la base real.
type memStore struct {
	mu       stdsync.Mutex
	txMu     stdsync.Mutex
	products map[string]*entity.Product
	moves    []*entity.StockMove
}

func newMemStore() *memStore {
	return &memStore{products: make(map[string]*entity.Product)}
}

func (s *memStore) addProduct(sku string) *entity.Product {
	p := &entity.Product{
		ID:     uuid.New().String(),
		SKU:    sku,
		Name:   "Producto " + sku,
		Active: true,
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) RunStock(ctx context.Context, fn func(
	moveRepo repository.StockMoveRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	snapshot := append([]*entity.StockMove(nil), s.moves...)
	s.mu.Unlock()
	if err := fn(&memMoveRepo{s}, &memProductRepo{s}); err != nil {
		s.mu.Lock()
		s.moves = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

type memMoveRepo struct{ s *memStore }

func (r *memMoveRepo) Create(move *entity.StockMove) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *move
	r.s.moves = append(r.s.moves, &cp)
	return nil
}

func (r *memMoveRepo) SumByProduct(productID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, m := range r.s.moves {
		if m.ProductID == productID {
			total = total.Add(m.Quantity)
		}
	}
	return total, nil
}

func (r *memMoveRepo) ListByProduct(productID string) ([]*entity.StockMove, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMove
	for _, m := range r.s.moves {
		if m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}
