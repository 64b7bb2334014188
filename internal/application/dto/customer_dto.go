package dto

import "github.com/shopspring/decimal"

// CreateCustomerRequest body para POST /api/customers. El campo user_id del
// payload se ignora: el dueño siempre es el principal autenticado.
type CreateCustomerRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=255"`
	LastName  string `json:"last_name" validate:"required,min=2,max=255"`
	Email     string `json:"email" validate:"required,email"`
	Company   string `json:"company,omitempty" validate:"omitempty,max=255"`
	UserID    string `json:"user_id,omitempty"`
}

// UpdateCustomerRequest body para PUT /api/customers/:id.
type UpdateCustomerRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=255"`
	LastName  string `json:"last_name" validate:"required,min=2,max=255"`
	Email     string `json:"email" validate:"required,email"`
	Company   string `json:"company,omitempty" validate:"omitempty,max=255"`
}

// CustomerResponse cliente en respuestas, con los montos agregados de sus
// facturas (unpaid excluye PAID y CANCELED).
type CustomerResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	Company      string          `json:"company,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	UnpaidAmount decimal.Decimal `json:"unpaid_amount"`
}

// CustomerListQuery filtros del listado de clientes.
type CustomerListQuery struct {
	Search  string `query:"search"`
	OrderBy string `query:"order_by" validate:"omitempty,oneof=first_name last_name company created_at"`
	Dir     string `query:"dir" validate:"omitempty,oneof=asc desc"`
	PageRequest
}
