package entity

import "time"

// Customer representa un cliente del canal de ventas (email único).
// La ingesta lo crea bajo demanda; después es propiedad del directorio de catálogo.
type Customer struct {
	ID        string
	Email     string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
