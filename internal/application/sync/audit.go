package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Pedidos-sync/internal/domain"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
)

// Audit expone la superficie de observabilidad del núcleo: la bitácora de
// sincronización (solo append) y la cola de reintentos pendientes.
type Audit struct {
	syncRepo  repository.SyncLogRepository
	retryRepo repository.RetryQueueRepository
}

// NewAudit construye la superficie de auditoría.
func NewAudit(syncRepo repository.SyncLogRepository, retryRepo repository.RetryQueueRepository) *Audit {
	return &Audit{syncRepo: syncRepo, retryRepo: retryRepo}
}

// AppendLog agrega una entrada a la bitácora en nombre de un colaborador
// externo (los componentes internos escriben la suya directamente).
func (a *Audit) AppendLog(ctx context.Context, entityType, entityID, operation, status string, details entity.SyncDetails) error {
	if entityType == "" || operation == "" || status == "" {
		return domain.ErrInvalidInput
	}
	entry := &entity.SyncLogEntry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		Status:     status,
		Details:    details,
	}
	if err := a.syncRepo.Append(entry); err != nil {
		return fmt.Errorf("append bitácora: %w", err)
	}
	return nil
}

// ListLogs devuelve entradas de la bitácora, más recientes primero.
func (a *Audit) ListLogs(ctx context.Context, limit, offset int) ([]*entity.SyncLogEntry, error) {
	return a.syncRepo.List(limit, offset)
}

// ListPendingRetries devuelve las entradas pendientes de la cola de reintentos.
func (a *Audit) ListPendingRetries(ctx context.Context, limit int) ([]*entity.RetryEntry, error) {
	return a.retryRepo.ListPending(limit)
}
