package entity

import (
	"encoding/json"
	"time"
)

// Estados de una entrada de la cola de reintentos.
const (
	RetryStatePending    = "pending"    // en espera de que venza next_retry_at
	RetryStateProcessing = "processing" // reclamada por un barrido en curso
	RetryStateDead       = "dead"       // superó el tope de reintentos; requiere intervención manual
)

// RetryEntry es un intento de ingesta fallido en espera de redelivery.
// Payload conserva el pedido original tal como llegó del canal; la entrada
// vive hasta resolverse o pasar a dead-letter, nunca se descarta en silencio.
type RetryEntry struct {
	ID          string
	Payload     json.RawMessage
	RetryCount  int
	NextRetryAt time.Time
	State       string
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
