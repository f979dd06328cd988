package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	"github.com/jhoicas/Pedidos-sync/internal/domain"
	"github.com/jhoicas/Pedidos-sync/pkg/logger"
)

// Report resume una corrida de sincronización.
type Report struct {
	Fetched    int
	Committed  int
	Duplicates int
	Failed     int
	Skipped    int // líneas omitidas por SKU desconocido, acumulado del lote
}

// OrchestratorConfig parámetros de la corrida.
type OrchestratorConfig struct {
	StatusFilter string
	PageSize     int
	Workers      int           // 1 = secuencial; >1 confía en los bloqueos de fila para serializar por producto
	OrderTimeout time.Duration // tope por pedido individual; 0 = sin tope
}

// Orchestrator sondea el canal de ventas y conduce cada pedido del lote por el
// pipeline de ingesta.
type Orchestrator struct {
	source   OrderSource
	pipeline *Pipeline
	cfg      OrchestratorConfig
	log      *logger.Logger
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(source OrderSource, pipeline *Pipeline, cfg OrchestratorConfig, log *logger.Logger) *Orchestrator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Orchestrator{source: source, pipeline: pipeline, cfg: cfg, log: log}
}

// Run trae un lote de pedidos candidatos y los procesa. Un fallo al traer el
// lote es fatal y aborta la corrida completa; la siguiente corrida programada
// reintenta desde cero. El fallo de un pedido individual se captura, se
// registra y no detiene el lote.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	orders, err := o.source.FetchOrders(ctx, o.cfg.StatusFilter, o.cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: traer lote del canal: %v", domain.ErrFatal, err)
	}
	o.log.Info().Int("fetched", len(orders)).Str("status", o.cfg.StatusFilter).Msg("lote de pedidos candidatos")

	report := &Report{Fetched: len(orders)}
	var mu stdsync.Mutex
	var wg stdsync.WaitGroup
	sem := make(chan struct{}, o.cfg.Workers)

	for _, in := range orders {
		wg.Add(1)
		sem <- struct{}{}
		go func(in dto.InboundOrder) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					o.log.Error().Interface("panic", r).Str("external_id", in.ExternalID).Msg("pánico procesando pedido")
					mu.Lock()
					report.Failed++
					mu.Unlock()
				}
			}()
			orderCtx := ctx
			if o.cfg.OrderTimeout > 0 {
				var cancel context.CancelFunc
				orderCtx, cancel = context.WithTimeout(ctx, o.cfg.OrderTimeout)
				defer cancel()
			}
			res := o.pipeline.Ingest(orderCtx, in)
			mu.Lock()
			defer mu.Unlock()
			report.Skipped += res.SkippedItems
			switch res.Status {
			case StatusCommitted:
				report.Committed++
			case StatusDuplicate:
				report.Duplicates++
			default:
				report.Failed++
				o.log.Error().Err(res.Err).Str("external_id", in.ExternalID).Msg("fallo ingiriendo pedido")
			}
		}(in)
	}
	wg.Wait()

	o.log.Info().
		Int("fetched", report.Fetched).
		Int("committed", report.Committed).
		Int("duplicates", report.Duplicates).
		Int("failed", report.Failed).
		Int("skipped_items", report.Skipped).
		Msg("corrida de sincronización terminada")
	return report, nil
}
