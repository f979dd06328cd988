package sync_test

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-sync/internal/application/catalog"
	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	"github.com/jhoicas/Pedidos-sync/internal/application/stock"
	appsync "github.com/jhoicas/Pedidos-sync/internal/application/sync"
	"github.com/jhoicas/Pedidos-sync/internal/domain"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
	"github.com/jhoicas/Pedidos-sync/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con semántica transaccional (snapshot + rollback), para
// ejercitar el pipeline completo sin base de datos.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu   stdsync.Mutex // por operación
	txMu stdsync.Mutex // serializa transacciones completas

	products  map[string]*entity.Product // por ID
	bySKU     map[string]string          // SKU → ID
	customers map[string]*entity.Customer
	orders    map[string]*entity.Order // por external_id
	items     []*entity.OrderItem
	moves     []*entity.StockMove
	logs      []*entity.SyncLogEntry
	retries   map[string]*entity.RetryEntry

	// Inyección de fallos.
	failItemCreate error // CreateItem falla dentro de la tx
	failGetByEmail error // resolución de cliente falla
	lookupMisses   int   // GetByExternalID devuelve nil estas veces (simula carrera)
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[string]*entity.Product),
		bySKU:     make(map[string]string),
		customers: make(map[string]*entity.Customer),
		orders:    make(map[string]*entity.Order),
		retries:   make(map[string]*entity.RetryEntry),
	}
}

// addProduct registra un producto activo y un movimiento de compra inicial.
func (s *memStore) addProduct(sku string, initialStock int64) *entity.Product {
	p := &entity.Product{
		ID:       uuid.New().String(),
		SKU:      sku,
		Name:     "Producto " + sku,
		Price:    decimal.NewFromInt(10),
		Currency: "EUR",
		Active:   true,
	}
	s.products[p.ID] = p
	s.bySKU[sku] = p.ID
	if initialStock != 0 {
		s.moves = append(s.moves, &entity.StockMove{
			ID:        uuid.New().String(),
			ProductID: p.ID,
			Quantity:  decimal.NewFromInt(initialStock),
			Type:      entity.MoveTypePurchase,
			Reference: "PO-INICIAL",
			CreatedAt: time.Now().UTC(),
		})
	}
	return p
}

func (s *memStore) currentStock(productID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, m := range s.moves {
		if m.ProductID == productID {
			total = total.Add(m.Quantity)
		}
	}
	return total
}

// ── Transacciones ─────────────────────────────────────────────────────────────

type memSnapshot struct {
	orders  map[string]*entity.Order
	items   []*entity.OrderItem
	moves   []*entity.StockMove
	byEmail map[string]*entity.Customer
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		orders:  make(map[string]*entity.Order, len(s.orders)),
		items:   append([]*entity.OrderItem(nil), s.items...),
		moves:   append([]*entity.StockMove(nil), s.moves...),
		byEmail: make(map[string]*entity.Customer, len(s.customers)),
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.customers {
		snap.byEmail[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = snap.orders
	s.items = snap.items
	s.moves = snap.moves
	s.customers = snap.byEmail
}

// Run implementa sync.TxRunner: la transacción corre serializada y en fallo se
// revierte todo lo escrito dentro de ella.
func (s *memStore) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	moveRepo repository.StockMoveRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(&memOrderRepo{s}, &memStockMoveRepo{s}, &memProductRepo{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunStock implementa stock.TxRunner.
func (s *memStore) RunStock(ctx context.Context, fn func(
	moveRepo repository.StockMoveRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(&memStockMoveRepo{s}, &memProductRepo{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

var (
	_ appsync.TxRunner = (*memStore)(nil)
	_ stock.TxRunner   = (*memStore)(nil)
)

// ── Repositorios ──────────────────────────────────────────────────────────────

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ExternalID]; ok {
		return fmt.Errorf("insertar pedido: %w", domain.ErrDuplicate)
	}
	cp := *order
	r.s.orders[order.ExternalID] = &cp
	return nil
}

func (r *memOrderRepo) CreateItem(item *entity.OrderItem) error {
	if r.s.failItemCreate != nil {
		return r.s.failItemCreate
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *item
	r.s.items = append(r.s.items, &cp)
	return nil
}

func (r *memOrderRepo) GetByExternalID(externalID string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.lookupMisses > 0 {
		r.s.lookupMisses--
		return nil, nil
	}
	order, ok := r.s.orders[externalID]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (r *memOrderRepo) ListItems(orderID string) ([]*entity.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OrderItem
	for _, it := range r.s.items {
		if it.OrderID == orderID {
			cp := *it
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
	id, ok := r.s.bySKU[sku]
	if !ok {
		return nil, nil
	}
	cp := *r.s.products[id]
	return &cp, nil
}

func (r *memProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	// El bloqueo de fila lo aproxima txMu: las transacciones corren
	// serializadas en el almacén de memoria.
	return r.GetByID(id)
}

type memCustomerRepo struct{ s *memStore }

func (r *memCustomerRepo) Create(customer *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[customer.Email]; ok {
		return fmt.Errorf("insertar cliente: %w", domain.ErrDuplicate)
	}
	cp := *customer
	r.s.customers[customer.Email] = &cp
	return nil
}

func (r *memCustomerRepo) GetByEmail(email string) (*entity.Customer, error) {
	if r.s.failGetByEmail != nil {
		return nil, r.s.failGetByEmail
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[email]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Customer
	for _, c := range r.s.customers {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

type memStockMoveRepo struct{ s *memStore }

func (r *memStockMoveRepo) Create(move *entity.StockMove) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *move
	r.s.moves = append(r.s.moves, &cp)
	return nil
}

func (r *memStockMoveRepo) SumByProduct(productID string) (decimal.Decimal, error) {
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

func (r *memStockMoveRepo) ListByProduct(productID string) ([]*entity.StockMove, error) {
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

type memSyncLogRepo struct{ s *memStore }

func (r *memSyncLogRepo) Append(entry *entity.SyncLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	r.s.logs = append(r.s.logs, &cp)
	return nil
}

func (r *memSyncLogRepo) List(limit, offset int) ([]*entity.SyncLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*entity.SyncLogEntry(nil), r.s.logs...), nil
}

type memRetryRepo struct{ s *memStore }

func (r *memRetryRepo) Enqueue(entry *entity.RetryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	r.s.retries[entry.ID] = &cp
	return nil
}

func (r *memRetryRepo) ClaimDue(now time.Time, limit int) ([]*entity.RetryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.RetryEntry
	for _, e := range r.s.retries {
		if len(out) >= limit {
			break
		}
		if e.State == entity.RetryStatePending && !e.NextRetryAt.After(now) {
			e.State = entity.RetryStateProcessing
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRetryRepo) Reschedule(id string, retryCount int, nextRetryAt time.Time, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.retries[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.State = entity.RetryStatePending
	e.RetryCount = retryCount
	e.NextRetryAt = nextRetryAt
	e.LastError = lastError
	return nil
}

func (r *memRetryRepo) MarkDead(id string, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.retries[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.State = entity.RetryStateDead
	e.LastError = lastError
	return nil
}

func (r *memRetryRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.retries, id)
	return nil
}

func (r *memRetryRepo) ListPending(limit int) ([]*entity.RetryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.RetryEntry
	for _, e := range r.s.retries {
		if e.State == entity.RetryStatePending && len(out) < limit {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── Fakes de puertos externos ─────────────────────────────────────────────────

type fakeSource struct {
	orders []dto.InboundOrder
	err    error
}

func (f *fakeSource) FetchOrders(ctx context.Context, status string, pageSize int) ([]dto.InboundOrder, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

type fakeEnricher struct {
	enrichment *appsync.Enrichment
	err        error
}

func (f *fakeEnricher) Score(ctx context.Context, order dto.InboundOrder) (*appsync.Enrichment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.enrichment, nil
}

// ── Armado del pipeline bajo prueba ───────────────────────────────────────────

type testEnv struct {
	store    *memStore
	pipeline *appsync.Pipeline
	ledger   *stock.Ledger
}

func newTestEnv(enricher appsync.Enricher) *testEnv {
	store := newMemStore()
	moveRepo := &memStockMoveRepo{store}
	productRepo := &memProductRepo{store}
	ledger := stock.NewLedger(store, moveRepo, productRepo, stock.Config{AllowOversell: false})
	directory := catalog.NewDirectory(&memCustomerRepo{store}, productRepo, logger.Nop())
	pipeline := appsync.NewPipeline(
		store,
		&memOrderRepo{store},
		directory,
		enricher,
		ledger,
		&memSyncLogRepo{store},
		&memRetryRepo{store},
		appsync.Backoff{Base: time.Minute, Cap: time.Hour},
		logger.Nop(),
	)
	return &testEnv{store: store, pipeline: pipeline, ledger: ledger}
}

func inboundOrder(externalID string, items ...dto.InboundOrderItem) dto.InboundOrder {
	return dto.InboundOrder{
		ExternalID:    externalID,
		CustomerEmail: "cliente@example.com",
		CustomerName:  "Cliente de Prueba",
		Status:        "processing",
		TotalAmount:   decimal.NewFromInt(100),
		Currency:      "EUR",
		Items:         items,
	}
}

func lineItem(sku string, qty int64) dto.InboundOrderItem {
	return dto.InboundOrderItem{
		SKU:       sku,
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromInt(10),
	}
}
