package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	appsync "github.com/jhoicas/Pedidos-sync/internal/application/sync"
)

// SyncHandler expone la operación de sincronización y su superficie de
// auditoría: bitácora y cola de reintentos.
type SyncHandler struct {
	orchestrator *appsync.Orchestrator
	sweeper      *appsync.Sweeper
	audit        *appsync.Audit
}

// NewSyncHandler construye el handler.
func NewSyncHandler(orchestrator *appsync.Orchestrator, sweeper *appsync.Sweeper, audit *appsync.Audit) *SyncHandler {
	return &SyncHandler{orchestrator: orchestrator, sweeper: sweeper, audit: audit}
}

// RunSync dispara una corrida de sincronización manual y devuelve el resumen.
func (h *SyncHandler) RunSync(c *fiber.Ctx) error {
	report, err := h.orchestrator.Run(c.Context())
	if err != nil {
		// Fallo al traer el lote: fatal para la corrida, no para el proceso.
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "FETCH_FAILED", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"fetched":       report.Fetched,
		"committed":     report.Committed,
		"duplicates":    report.Duplicates,
		"failed":        report.Failed,
		"skipped_items": report.Skipped,
	})
}

// RunSweep dispara un barrido manual de la cola de reintentos.
func (h *SyncHandler) RunSweep(c *fiber.Ctx) error {
	report, err := h.sweeper.Sweep(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SWEEP_FAILED", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"claimed":       report.Claimed,
		"recovered":     report.Recovered,
		"rescheduled":   report.Rescheduled,
		"dead_lettered": report.DeadLettered,
	})
}

// ListSyncLogs devuelve la bitácora de sincronización, más reciente primero.
func (h *SyncHandler) ListSyncLogs(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	entries, err := h.audit.ListLogs(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	resp := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, fiber.Map{
			"id":          e.ID,
			"timestamp":   e.Timestamp.Format(time.RFC3339),
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID,
			"operation":   e.Operation,
			"status":      e.Status,
			"details":     e.Details,
		})
	}
	return c.JSON(resp)
}

// ListRetryQueue devuelve las entradas pendientes de la cola de reintentos.
func (h *SyncHandler) ListRetryQueue(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	entries, err := h.audit.ListPendingRetries(c.Context(), page.Limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	resp := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, fiber.Map{
			"id":            e.ID,
			"retry_count":   e.RetryCount,
			"next_retry_at": e.NextRetryAt.Format(time.RFC3339),
			"state":         e.State,
			"last_error":    e.LastError,
		})
	}
	return c.JSON(resp)
}
