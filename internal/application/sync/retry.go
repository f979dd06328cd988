package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
	"github.com/jhoicas/Pedidos-sync/pkg/logger"
)

// Backoff calcula la espera exponencial entre reintentos: Base × 2^n, acotada
// por Cap.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

// Delay devuelve la espera para el reintento número retryCount (0 = primero).
func (b Backoff) Delay(retryCount int) time.Duration {
	if retryCount > 30 {
		retryCount = 30 // evita el desborde del shift
	}
	d := b.Base << uint(retryCount)
	if b.Cap > 0 && (d > b.Cap || d <= 0) {
		return b.Cap
	}
	return d
}

// SweepReport resume un barrido de la cola de reintentos.
type SweepReport struct {
	Claimed      int
	Recovered    int
	Rescheduled  int
	DeadLettered int
}

// SweeperConfig parámetros del barrido.
type SweeperConfig struct {
	BatchSize  int
	MaxRetries int // reintentos permitidos antes de dead-letter
	Backoff    Backoff
}

// Sweeper reproduce las entradas vencidas de la cola de reintentos por el
// mismo pipeline de ingesta. Reclamar una entrada es una transición de estado
// condicional y atómica, así un barrido y una corrida en vivo nunca procesan
// la misma entrada a la vez.
type Sweeper struct {
	retryRepo repository.RetryQueueRepository
	syncRepo  repository.SyncLogRepository
	pipeline  *Pipeline
	cfg       SweeperConfig
	log       *logger.Logger
}

// NewSweeper construye el barrido de reintentos.
func NewSweeper(
	retryRepo repository.RetryQueueRepository,
	syncRepo repository.SyncLogRepository,
	pipeline *Pipeline,
	cfg SweeperConfig,
	log *logger.Logger,
) *Sweeper {
	return &Sweeper{retryRepo: retryRepo, syncRepo: syncRepo, pipeline: pipeline, cfg: cfg, log: log}
}

// Sweep reclama las entradas vencidas y las reproduce. En éxito (confirmado o
// duplicado) la entrada se elimina; en fallo se reprograma con backoff
// exponencial, y pasado el tope de reintentos se transiciona a dead-letter en
// lugar de descartarse.
func (s *Sweeper) Sweep(ctx context.Context) (*SweepReport, error) {
	entries, err := s.retryRepo.ClaimDue(time.Now().UTC(), s.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("reclamar reintentos vencidos: %w", err)
	}
	report := &SweepReport{Claimed: len(entries)}

	for _, entry := range entries {
		var in dto.InboundOrder
		if err := json.Unmarshal(entry.Payload, &in); err != nil {
			// Payload ilegible: ningún reintento lo va a arreglar.
			s.markDead(entry, fmt.Errorf("payload ilegible: %w", err))
			report.DeadLettered++
			continue
		}

		res := s.pipeline.Replay(ctx, in)
		switch res.Status {
		case StatusCommitted, StatusDuplicate:
			if err := s.retryRepo.Delete(entry.ID); err != nil {
				s.log.Error().Err(err).Str("entry_id", entry.ID).Msg("no se pudo eliminar la entrada recuperada")
				continue
			}
			report.Recovered++
		default:
			next := entry.RetryCount + 1
			if next > s.cfg.MaxRetries {
				s.markDead(entry, res.Err)
				report.DeadLettered++
				continue
			}
			nextAt := time.Now().UTC().Add(s.cfg.Backoff.Delay(next))
			if err := s.retryRepo.Reschedule(entry.ID, next, nextAt, errText(res.Err)); err != nil {
				s.log.Error().Err(err).Str("entry_id", entry.ID).Msg("no se pudo reprogramar el reintento")
				continue
			}
			report.Rescheduled++
		}
	}

	if report.Claimed > 0 {
		s.log.Info().
			Int("claimed", report.Claimed).
			Int("recovered", report.Recovered).
			Int("rescheduled", report.Rescheduled).
			Int("dead_lettered", report.DeadLettered).
			Msg("barrido de reintentos terminado")
	}
	return report, nil
}

func (s *Sweeper) markDead(entry *entity.RetryEntry, cause error) {
	if err := s.retryRepo.MarkDead(entry.ID, errText(cause)); err != nil {
		s.log.Error().Err(err).Str("entry_id", entry.ID).Msg("no se pudo marcar la entrada como dead-letter")
		return
	}
	s.log.Warn().Str("entry_id", entry.ID).Int("retry_count", entry.RetryCount).Msg("entrada movida a dead-letter; requiere intervención manual")
	logEntry := &entity.SyncLogEntry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		EntityType: "retry_entry",
		EntityID:   entry.ID,
		Operation:  entity.SyncOpRetry,
		Status:     entity.SyncStatusFail,
		Details: entity.SyncDetails{
			Kind:       entity.DetailKindDeadLetter,
			RetryCount: entry.RetryCount,
			Error:      errText(cause),
		},
	}
	if err := s.syncRepo.Append(logEntry); err != nil {
		s.log.Error().Err(err).Str("entry_id", entry.ID).Msg("no se pudo escribir la bitácora de dead-letter")
	}
}
