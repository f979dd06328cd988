package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-sync/internal/application/catalog"
	"github.com/jhoicas/Pedidos-sync/internal/domain"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
	"github.com/jhoicas/Pedidos-sync/pkg/logger"
)

// fakeCustomerRepo simula la constraint única por email; conflictOnce fuerza
// la carrera insert-conflicto-releer una sola vez.
type fakeCustomerRepo struct {
	byEmail      map[string]*entity.Customer
	conflictOnce bool
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{byEmail: make(map[string]*entity.Customer)}
}

func (f *fakeCustomerRepo) Create(customer *entity.Customer) error {
	if f.conflictOnce {
		f.conflictOnce = false
		// Otro worker insertó entre medio: el registro aparece al releer.
		winner := *customer
		winner.ID = "ganador-de-la-carrera"
		f.byEmail[customer.Email] = &winner
		return fmt.Errorf("insertar cliente: %w", domain.ErrDuplicate)
	}
	if _, ok := f.byEmail[customer.Email]; ok {
		return fmt.Errorf("insertar cliente: %w", domain.ErrDuplicate)
	}
	cp := *customer
	f.byEmail[customer.Email] = &cp
	return nil
}

func (f *fakeCustomerRepo) GetByEmail(email string) (*entity.Customer, error) {
	c, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range f.byEmail {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

type fakeProductRepo struct {
	bySKU map[string]*entity.Product
	err   error
}

func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	for _, p := range f.bySKU {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.bySKU[sku]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (f *fakeProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	return f.GetByID(id)
}

func newTestDirectory() (*catalog.Directory, *fakeCustomerRepo, *fakeProductRepo) {
	customers := newFakeCustomerRepo()
	products := &fakeProductRepo{bySKU: make(map[string]*entity.Product)}
	return catalog.NewDirectory(customers, products, logger.Nop()), customers, products
}

func TestCreateCustomer_CreaUnoNuevo(t *testing.T) {
	directory, repo, _ := newTestDirectory()

	customer, err := directory.CreateCustomer(context.Background(), "ana@example.com", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", customer.Email)
	assert.True(t, customer.Active)
	assert.Len(t, repo.byEmail, 1)
}

func TestCreateCustomer_ConflictoDevuelveElExistente(t *testing.T) {
	directory, repo, _ := newTestDirectory()
	repo.conflictOnce = true

	customer, err := directory.CreateCustomer(context.Background(), "ana@example.com", "Ana")
	require.NoError(t, err, "el conflicto de unicidad se resuelve releyendo, no es un error")
	assert.Equal(t, "ganador-de-la-carrera", customer.ID,
		"debe devolver el cliente que insertó el otro worker")
}

func TestCreateCustomer_EmailVacio(t *testing.T) {
	directory, _, _ := newTestDirectory()

	_, err := directory.CreateCustomer(context.Background(), "", "Sin Email")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFindCustomerByEmail_NoExistenteEsNilNil(t *testing.T) {
	directory, _, _ := newTestDirectory()

	customer, err := directory.FindCustomerByEmail(context.Background(), "nadie@example.com")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestFindProductBySKU_SoloActivos(t *testing.T) {
	directory, _, products := newTestDirectory()
	products.bySKU["A100"] = &entity.Product{ID: "p1", SKU: "A100", Active: true}
	products.bySKU["B200"] = &entity.Product{ID: "p2", SKU: "B200", Active: false}

	found, err := directory.FindProductBySKU(context.Background(), "A100")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "p1", found.ID)

	inactive, err := directory.FindProductBySKU(context.Background(), "B200")
	require.NoError(t, err)
	assert.Nil(t, inactive, "un producto inactivo se trata como inexistente")
}

func TestFindProductBySKU_PropagaElErrorDelRepositorio(t *testing.T) {
	directory, _, products := newTestDirectory()
	products.err = errors.New("conexión perdida")

	_, err := directory.FindProductBySKU(context.Background(), "A100")
	assert.Error(t, err)
}
