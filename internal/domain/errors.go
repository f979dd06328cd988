package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrTransient         = errors.New("fallo transitorio de dependencia externa")
	ErrFatal             = errors.New("fallo fatal de la corrida de sincronización")
)

// IsRetryable indica si un fallo de ingesta debe encolarse para reintento.
// Los errores de validación nunca se reintentan: el payload no va a cambiar
// por volver a procesarlo.
func IsRetryable(err error) bool {
	return err != nil && !errors.Is(err, ErrInvalidInput)
}
