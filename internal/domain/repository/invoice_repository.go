package repository

import "github.com/jhoicas/facturas-api/internal/domain/entity"

// InvoiceListOptions orden y paginación para listados de facturas.
// El orden por defecto es amount ascendente.
type InvoiceListOptions struct {
	OrderBy string // amount, sent_at
	Desc    bool
	Limit   int
	Offset  int
}

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	ListByUser(userID string, opts InvoiceListOptions) ([]*entity.Invoice, error)
	ListByCustomer(customerID string) ([]*entity.Invoice, error)
	Update(invoice *entity.Invoice) error
	// UpdateChrono persiste solo el chrono (operación de incremento).
	UpdateChrono(id string, chrono int) error
	Delete(id string) error
	// FindMaxChronoForUser devuelve el chrono máximo entre las facturas de los
	// clientes del usuario. ok=false cuando el usuario no tiene facturas.
	FindMaxChronoForUser(userID string) (max int, ok bool, err error)
}
