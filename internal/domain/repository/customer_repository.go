package repository

import "github.com/jhoicas/facturas-api/internal/domain/entity"

// CustomerListOptions filtros y orden para listados de clientes.
// Search hace match parcial sobre nombre, apellido y empresa.
type CustomerListOptions struct {
	Search  string
	OrderBy string // first_name, last_name, company, created_at
	Desc    bool
	Limit   int
	Offset  int
}

// CustomerRepository define el puerto de persistencia para Customer.
// Los listados llenan los agregados TotalAmount/UnpaidAmount.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	ListByUser(userID string, opts CustomerListOptions) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error
	Delete(id string) error
}
