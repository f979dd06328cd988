package repository

import "github.com/jhoicas/Pedidos-sync/internal/domain/entity"

// SyncLogRepository define el puerto de la bitácora de sincronización
// (solo append y consulta; las entradas nunca se mutan).
type SyncLogRepository interface {
	Append(entry *entity.SyncLogEntry) error
	List(limit, offset int) ([]*entity.SyncLogEntry, error)
}
