package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados válidos de una factura.
const (
	StatusSent     = "SENT"
	StatusPaid     = "PAID"
	StatusCanceled = "CANCELED"
)

// Invoice representa una factura. Pertenece a exactamente un Customer.
//
// Chrono es el número de secuencia de la factura, único dentro del conjunto de
// facturas del User dueño del cliente. Lo asigna el pipeline de creación
// (1 + max actual); no hay constraint de unicidad en DB, por lo que dos
// creaciones concurrentes para el mismo usuario pueden leer el mismo máximo.
type Invoice struct {
	ID         string
	CustomerID string
	Amount     decimal.Decimal
	SentAt     time.Time
	Status     string // SENT, PAID, CANCELED
	Chrono     int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
