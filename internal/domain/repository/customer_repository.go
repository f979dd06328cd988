package repository

import "github.com/jhoicas/Pedidos-sync/internal/domain/entity"

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	// Create persiste un cliente nuevo; devuelve domain.ErrDuplicate si el
	// email ya existe (constraint único en la base).
	Create(customer *entity.Customer) error
	GetByEmail(email string) (*entity.Customer, error)
	List(limit, offset int) ([]*entity.Customer, error)
}
