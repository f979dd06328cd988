package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	"github.com/jhoicas/Pedidos-sync/internal/domain"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
	"github.com/jhoicas/Pedidos-sync/pkg/logger"
)

// Status es el estado terminal de un intento de ingesta.
type Status string

const (
	StatusCommitted Status = "committed"
	StatusDuplicate Status = "duplicate"
	StatusFailed    Status = "failed"
)

// Result es el resultado terminal de la ingesta de un pedido.
type Result struct {
	Status       Status
	Order        *entity.Order
	SkippedItems int
	Err          error
}

// Pipeline convierte un payload de pedido del canal en un pedido confirmado,
// movimientos del libro de stock y una entrada de bitácora; o en una entrada
// de la cola de reintentos si el intento falla.
//
// Máquina de estados: recibido → cliente resuelto → líneas resueltas →
// confirmado; con duplicate (no-op) y failed (encolado) como terminales.
type Pipeline struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	directory Directory
	enricher  Enricher
	ledger    StockLedger
	syncRepo  repository.SyncLogRepository
	retryRepo repository.RetryQueueRepository
	backoff   Backoff
	log       *logger.Logger
}

// NewPipeline construye el pipeline de ingesta. enricher puede ser nil
// (enriquecimiento deshabilitado).
func NewPipeline(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	directory Directory,
	enricher Enricher,
	ledger StockLedger,
	syncRepo repository.SyncLogRepository,
	retryRepo repository.RetryQueueRepository,
	backoff Backoff,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		directory: directory,
		enricher:  enricher,
		ledger:    ledger,
		syncRepo:  syncRepo,
		retryRepo: retryRepo,
		backoff:   backoff,
		log:       log,
	}
}

// Ingest ejecuta la máquina de estados para un pedido recién llegado del
// canal. Todo estado terminal (incluido duplicate) deja una entrada en la
// bitácora; los fallos reintentables encolan además el payload original con
// retry_count 0.
func (p *Pipeline) Ingest(ctx context.Context, in dto.InboundOrder) *Result {
	res := p.run(ctx, in)
	p.logOutcome(in, entity.SyncOpCreate, res)
	if res.Status == StatusFailed && domain.IsRetryable(res.Err) {
		p.enqueueRetry(in, res.Err)
	}
	return res
}

// Replay ejecuta la misma máquina de estados para un payload reclamado de la
// cola de reintentos. No encola en fallo: el barrido reprograma o dead-letterea
// la entrada existente.
func (p *Pipeline) Replay(ctx context.Context, in dto.InboundOrder) *Result {
	res := p.run(ctx, in)
	p.logOutcome(in, entity.SyncOpRetry, res)
	return res
}

// GetOrder devuelve el pedido confirmado para un external_id con sus líneas.
func (p *Pipeline) GetOrder(ctx context.Context, externalID string) (*entity.Order, []*entity.OrderItem, error) {
	order, err := p.orderRepo.GetByExternalID(externalID)
	if err != nil {
		return nil, nil, fmt.Errorf("consultar pedido: %w", err)
	}
	if order == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := p.orderRepo.ListItems(order.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("consultar líneas: %w", err)
	}
	return order, items, nil
}

type resolvedItem struct {
	product *entity.Product
	in      dto.InboundOrderItem
}

func (p *Pipeline) run(ctx context.Context, in dto.InboundOrder) *Result {
	// Recibido: validación mínima del payload.
	if in.ExternalID == "" || in.CustomerEmail == "" || len(in.Items) == 0 {
		return &Result{Status: StatusFailed, Err: fmt.Errorf("%w: external_id, customer_email e items son obligatorios", domain.ErrInvalidInput)}
	}

	// Chequeo de idempotencia: a lo sumo un pedido por external_id, sin
	// importar cuántas veces el canal reentregue.
	existing, err := p.orderRepo.GetByExternalID(in.ExternalID)
	if err != nil {
		return &Result{Status: StatusFailed, Err: fmt.Errorf("consultar pedido existente: %w", err)}
	}
	if existing != nil {
		return &Result{Status: StatusDuplicate, Order: existing}
	}

	// Resolución de cliente: buscar por email y crear bajo demanda.
	customer, err := p.directory.FindCustomerByEmail(ctx, in.CustomerEmail)
	if err != nil {
		return &Result{Status: StatusFailed, Err: fmt.Errorf("resolver cliente: %w", err)}
	}
	if customer == nil {
		customer, err = p.directory.CreateCustomer(ctx, in.CustomerEmail, in.CustomerName)
		if err != nil {
			return &Result{Status: StatusFailed, Err: fmt.Errorf("crear cliente: %w", err)}
		}
	}

	// Resolución de líneas: un SKU desconocido se omite y se cuenta, no tumba
	// el pedido completo.
	var resolved []resolvedItem
	skipped := 0
	for _, item := range in.Items {
		product, err := p.directory.FindProductBySKU(ctx, item.SKU)
		if err != nil {
			return &Result{Status: StatusFailed, SkippedItems: skipped, Err: fmt.Errorf("resolver SKU %s: %w", item.SKU, err)}
		}
		if product == nil {
			skipped++
			p.log.Warn().Str("sku", item.SKU).Str("external_id", in.ExternalID).Msg("SKU no resuelto; línea omitida")
			continue
		}
		resolved = append(resolved, resolvedItem{product: product, in: item})
	}

	// Enriquecimiento best effort, antes de abrir la transacción: una llamada
	// colgada no puede sostener el commit abierto.
	riskScore, notes := p.enrich(ctx, in)

	// Commit atómico: cabecera + líneas + movimientos de venta, todo o nada.
	now := time.Now().UTC()
	order := &entity.Order{
		ID:          uuid.New().String(),
		ExternalID:  in.ExternalID,
		CustomerID:  customer.ID,
		Status:      in.Status,
		TotalAmount: in.TotalAmount,
		Currency:    in.Currency,
		RiskScore:   riskScore,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	reference := "WC-ORDER-" + in.ExternalID
	err = p.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		moveRepo repository.StockMoveRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, r := range resolved {
			item := &entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: r.product.ID,
				Quantity:  r.in.Quantity,
				UnitPrice: r.in.UnitPrice,
				Subtotal:  r.in.Quantity.Mul(r.in.UnitPrice),
			}
			if err := orderRepo.CreateItem(item); err != nil {
				return err
			}
			if err := p.ledger.RecordSaleInTx(
				moveRepo, productRepo,
				r.product.ID, r.in.Quantity,
				reference, fmt.Sprintf("Venta pedido #%s", in.ExternalID),
				now,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Carrera de idempotencia: otro worker confirmó el mismo external_id
		// entre el chequeo y el commit. Se resuelve releyendo, nunca se
		// propaga al canal.
		if errors.Is(err, domain.ErrDuplicate) {
			if existing, ferr := p.orderRepo.GetByExternalID(in.ExternalID); ferr == nil && existing != nil {
				return &Result{Status: StatusDuplicate, Order: existing}
			}
		}
		return &Result{Status: StatusFailed, SkippedItems: skipped, Err: fmt.Errorf("commit del pedido: %w", err)}
	}
	return &Result{Status: StatusCommitted, Order: order, SkippedItems: skipped}
}

func (p *Pipeline) enrich(ctx context.Context, in dto.InboundOrder) (*decimal.Decimal, string) {
	if p.enricher == nil {
		return nil, ""
	}
	enr, err := p.enricher.Score(ctx, in)
	if err != nil {
		p.log.Warn().Err(err).Str("external_id", in.ExternalID).Msg("enriquecimiento falló; se continúa sin puntuación")
		return nil, ""
	}
	if enr == nil {
		return nil, ""
	}
	score := enr.RiskScore
	return &score, enr.Notes
}

func (p *Pipeline) logOutcome(in dto.InboundOrder, operation string, res *Result) {
	entry := &entity.SyncLogEntry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		EntityType: "order",
		EntityID:   in.ExternalID,
		Operation:  operation,
	}
	switch res.Status {
	case StatusCommitted:
		entry.Status = entity.SyncStatusSuccess
		entry.Details = entity.SyncDetails{
			Kind:         entity.DetailKindOrderCommitted,
			ExternalID:   in.ExternalID,
			OrderID:      res.Order.ID,
			SkippedItems: res.SkippedItems,
		}
	case StatusDuplicate:
		entry.Status = entity.SyncStatusDuplicate
		entry.Details = entity.SyncDetails{
			Kind:       entity.DetailKindOrderDuplicate,
			ExternalID: in.ExternalID,
			OrderID:    res.Order.ID,
		}
	default:
		entry.Status = entity.SyncStatusFail
		entry.Details = entity.SyncDetails{
			Kind:         entity.DetailKindOrderFailed,
			ExternalID:   in.ExternalID,
			SkippedItems: res.SkippedItems,
			Error:        errText(res.Err),
		}
	}
	if err := p.syncRepo.Append(entry); err != nil {
		p.log.Error().Err(err).Str("external_id", in.ExternalID).Msg("no se pudo escribir la bitácora de sincronización")
	}
}

func (p *Pipeline) enqueueRetry(in dto.InboundOrder, cause error) {
	payload, err := json.Marshal(in)
	if err != nil {
		p.log.Error().Err(err).Str("external_id", in.ExternalID).Msg("no se pudo serializar el payload para reintento")
		return
	}
	now := time.Now().UTC()
	entry := &entity.RetryEntry{
		ID:          uuid.New().String(),
		Payload:     payload,
		RetryCount:  0,
		NextRetryAt: now.Add(p.backoff.Delay(0)),
		State:       entity.RetryStatePending,
		LastError:   errText(cause),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.retryRepo.Enqueue(entry); err != nil {
		p.log.Error().Err(err).Str("external_id", in.ExternalID).Msg("no se pudo encolar el reintento")
		return
	}
	p.log.Info().Str("external_id", in.ExternalID).Time("next_retry_at", entry.NextRetryAt).Msg("pedido encolado para reintento")
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
