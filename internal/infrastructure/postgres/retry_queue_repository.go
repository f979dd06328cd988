package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
)

var _ repository.RetryQueueRepository = (*RetryQueueRepo)(nil)

const retryColumns = `id, payload, retry_count, next_retry_at, state, last_error, created_at, updated_at`

// RetryQueueRepo implementación de la cola de reintentos sobre PostgreSQL.
type RetryQueueRepo struct {
	q Querier
}

// NewRetryQueueRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRetryQueueRepository(q Querier) *RetryQueueRepo {
	return &RetryQueueRepo{q: q}
}

// Enqueue agrega una entrada nueva a la cola.
func (r *RetryQueueRepo) Enqueue(entry *entity.RetryEntry) error {
	query := `
		INSERT INTO sync_retry_queue (` + retryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, []byte(entry.Payload), entry.RetryCount, entry.NextRetryAt,
		entry.State, entry.LastError, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue retry entry: %w", err)
	}
	return nil
}

// ClaimDue reclama hasta limit entradas pending vencidas pasándolas a
// processing en un solo UPDATE condicional. FOR UPDATE SKIP LOCKED evita que
// dos barridos concurrentes (u otro proceso) reclamen la misma entrada.
func (r *RetryQueueRepo) ClaimDue(now time.Time, limit int) ([]*entity.RetryEntry, error) {
	query := `
		UPDATE sync_retry_queue
		SET state = 'processing', updated_at = now()
		WHERE id IN (
			SELECT id FROM sync_retry_queue
			WHERE state = 'pending' AND next_retry_at <= $1
			ORDER BY next_retry_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + retryColumns
	rows, err := r.q.Query(context.Background(), query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim retry entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.RetryEntry
	for rows.Next() {
		e, err := scanRetryEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Reschedule devuelve la entrada a pending con el contador y horario nuevos.
func (r *RetryQueueRepo) Reschedule(id string, retryCount int, nextRetryAt time.Time, lastError string) error {
	query := `
		UPDATE sync_retry_queue
		SET state = 'pending', retry_count = $2, next_retry_at = $3, last_error = $4, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, retryCount, nextRetryAt, lastError)
	if err != nil {
		return fmt.Errorf("reschedule retry entry: %w", err)
	}
	return nil
}

// MarkDead transiciona la entrada a dead-letter. Se conserva para intervención
// manual, nunca se borra de oficio.
func (r *RetryQueueRepo) MarkDead(id string, lastError string) error {
	query := `
		UPDATE sync_retry_queue
		SET state = 'dead', last_error = $2, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, lastError)
	if err != nil {
		return fmt.Errorf("mark retry entry dead: %w", err)
	}
	return nil
}

// Delete elimina una entrada resuelta.
func (r *RetryQueueRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM sync_retry_queue WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete retry entry: %w", err)
	}
	return nil
}

// ListPending lista las entradas pendientes, próximas a vencer primero.
func (r *RetryQueueRepo) ListPending(limit int) ([]*entity.RetryEntry, error) {
	query := `
		SELECT ` + retryColumns + `
		FROM sync_retry_queue WHERE state = 'pending'
		ORDER BY next_retry_at LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending retries: %w", err)
	}
	defer rows.Close()
	var list []*entity.RetryEntry
	for rows.Next() {
		e, err := scanRetryEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRetryEntry(row rowScanner) (*entity.RetryEntry, error) {
	var e entity.RetryEntry
	var payload []byte
	if err := row.Scan(&e.ID, &payload, &e.RetryCount, &e.NextRetryAt, &e.State, &e.LastError, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan retry entry: %w", err)
	}
	e.Payload = payload
	return &e, nil
}
