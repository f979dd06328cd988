package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appsync "github.com/jhoicas/Pedidos-sync/internal/application/sync"
	"github.com/jhoicas/Pedidos-sync/internal/domain"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/internal/domain/repository"
	"github.com/jhoicas/Pedidos-sync/pkg/logger"
)

var _ appsync.Directory = (*Directory)(nil)

// Directory resuelve clientes y productos para la ingesta, sobre los
// repositorios del catálogo. Es la implementación por defecto del puerto
// sync.Directory.
type Directory struct {
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	log          *logger.Logger
}

// NewDirectory construye el directorio de catálogo.
func NewDirectory(customerRepo repository.CustomerRepository, productRepo repository.ProductRepository, log *logger.Logger) *Directory {
	return &Directory{customerRepo: customerRepo, productRepo: productRepo, log: log}
}

// FindCustomerByEmail busca un cliente por email; nil, nil si no existe.
func (d *Directory) FindCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	if email == "" {
		return nil, domain.ErrInvalidInput
	}
	return d.customerRepo.GetByEmail(email)
}

// CreateCustomer crea el cliente, o devuelve el existente si otro worker ganó
// la carrera. Es insert y, ante violación de unicidad, re-lectura: nunca
// check-then-insert, que bajo concurrencia deja a un worker con el insert
// fallido en la mano.
func (d *Directory) CreateCustomer(ctx context.Context, email, name string) (*entity.Customer, error) {
	if email == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := d.customerRepo.Create(customer)
	if err == nil {
		d.log.Info().Str("email", email).Msg("cliente creado")
		return customer, nil
	}
	if errors.Is(err, domain.ErrDuplicate) {
		existing, ferr := d.customerRepo.GetByEmail(email)
		if ferr != nil {
			return nil, fmt.Errorf("releer cliente tras conflicto: %w", ferr)
		}
		if existing != nil {
			return existing, nil
		}
		// Duplicado reportado pero la re-lectura no lo encontró: estado raro,
		// que el caller decida si reintenta.
		return nil, domain.ErrConflict
	}
	return nil, fmt.Errorf("crear cliente: %w", err)
}

// FindProductBySKU busca un producto activo por SKU; nil, nil si no existe o
// está inactivo.
func (d *Directory) FindProductBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	if sku == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := d.productRepo.GetBySKU(sku)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, nil
	}
	return product, nil
}

// ListCustomers lista clientes con paginación, para la API de consulta.
func (d *Directory) ListCustomers(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	return d.customerRepo.List(limit, offset)
}
