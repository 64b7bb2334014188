package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente facturable. Pertenece a exactamente un User.
type Customer struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Company   string // opcional
	CreatedAt time.Time
	UpdatedAt time.Time

	// Agregados de lectura calculados sobre las facturas del cliente.
	// Los llenan las consultas de listado; no se persisten.
	TotalAmount  decimal.Decimal
	UnpaidAmount decimal.Decimal
}
