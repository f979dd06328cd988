package repository

import "github.com/jhoicas/Pedidos-sync/internal/domain/entity"

// ProductRepository define el puerto de lectura del catálogo de productos.
// El alta y mantenimiento del catálogo es responsabilidad de un sistema externo.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	// GetByIDForUpdate bloquea la fila del producto (SELECT FOR UPDATE) para
	// serializar movimientos concurrentes sobre el mismo producto.
	GetByIDForUpdate(id string) (*entity.Product, error)
}
