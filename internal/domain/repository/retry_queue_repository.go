package repository

import (
	"time"

	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
)

// RetryQueueRepository define el puerto de la cola de reintentos.
type RetryQueueRepository interface {
	Enqueue(entry *entity.RetryEntry) error
	// ClaimDue marca como processing hasta limit entradas pending vencidas y
	// las devuelve. La transición es condicional y atómica: dos barridos
	// concurrentes nunca reclaman la misma entrada.
	ClaimDue(now time.Time, limit int) ([]*entity.RetryEntry, error)
	// Reschedule devuelve la entrada a pending con el nuevo contador y horario.
	Reschedule(id string, retryCount int, nextRetryAt time.Time, lastError string) error
	// MarkDead transiciona la entrada a dead-letter (terminal, se conserva).
	MarkDead(id string, lastError string) error
	Delete(id string) error
	ListPending(limit int) ([]*entity.RetryEntry, error)
}
