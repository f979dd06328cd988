package entity

import "time"

// Estados registrados en la bitácora de sincronización.
const (
	SyncStatusSuccess   = "success"
	SyncStatusDuplicate = "duplicate"
	SyncStatusFail      = "fail"
)

// Operaciones registradas en la bitácora.
const (
	SyncOpCreate = "create"
	SyncOpRetry  = "retry"
)

// Kinds de detalle estructurado.
const (
	DetailKindOrderCommitted = "order_committed"
	DetailKindOrderDuplicate = "order_duplicate"
	DetailKindOrderFailed    = "order_failed"
	DetailKindDeadLetter     = "dead_letter"
)

// SyncDetails es el detalle estructurado de una entrada de bitácora: variante
// etiquetada por Kind. Se serializa como JSONB; los campos nuevos se agregan
// con omitempty para no romper lectores antiguos.
type SyncDetails struct {
	Kind         string `json:"kind"`
	ExternalID   string `json:"external_id,omitempty"`
	OrderID      string `json:"order_id,omitempty"`
	SkippedItems int    `json:"skipped_items,omitempty"`
	RetryCount   int    `json:"retry_count,omitempty"`
	Error        string `json:"error,omitempty"`
}

// SyncLogEntry es una entrada inmutable de la bitácora de sincronización.
// Solo se agrega, nunca se actualiza: es la superficie de auditoría del sistema.
type SyncLogEntry struct {
	ID         string
	Timestamp  time.Time
	EntityType string
	EntityID   string
	Operation  string
	Status     string
	Details    SyncDetails
}
