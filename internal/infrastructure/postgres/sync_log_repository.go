package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
)

var _ repository.SyncLogRepository = (*SyncLogRepo)(nil)

// SyncLogRepo implementación de la bitácora sobre PostgreSQL. La tabla
// sync_logs es append-only; details se guarda como JSONB.
type SyncLogRepo struct {
	q Querier
}

// NewSyncLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSyncLogRepository(q Querier) *SyncLogRepo {
	return &SyncLogRepo{q: q}
}

// Append agrega una entrada a la bitácora.
func (r *SyncLogRepo) Append(entry *entity.SyncLogEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	query := `
		INSERT INTO sync_logs (id, timestamp, entity_type, entity_id, operation, status, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.q.Exec(context.Background(), query,
		entry.ID, entry.Timestamp, entry.EntityType, entry.EntityID,
		entry.Operation, entry.Status, details,
	)
	if err != nil {
		return fmt.Errorf("insert sync log: %w", err)
	}
	return nil
}

// List devuelve entradas de la bitácora, más recientes primero.
func (r *SyncLogRepo) List(limit, offset int) ([]*entity.SyncLogEntry, error) {
	query := `
		SELECT id, timestamp, entity_type, entity_id, operation, status, details
		FROM sync_logs ORDER BY timestamp DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.SyncLogEntry
	for rows.Next() {
		var e entity.SyncLogEntry
		var details []byte
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.EntityType, &e.EntityID, &e.Operation, &e.Status, &details); err != nil {
			return nil, fmt.Errorf("scan sync log: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
