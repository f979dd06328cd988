package repository

import "github.com/jhoicas/Pedidos-sync/internal/domain/entity"

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
type OrderRepository interface {
	// Create persiste la cabecera; devuelve domain.ErrDuplicate si el
	// external_id ya fue confirmado (constraint único en la base).
	Create(order *entity.Order) error
	CreateItem(item *entity.OrderItem) error
	GetByExternalID(externalID string) (*entity.Order, error)
	ListItems(orderID string) ([]*entity.OrderItem, error)
}
