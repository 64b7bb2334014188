package dto

import "github.com/shopspring/decimal"

// CreateInvoiceRequest body para POST /api/invoices.
//
// SentAt acepta representaciones heterogéneas (RFC 3339 con o sin fracción,
// YYYY-MM-DD, segundos de época int/float); la denormalización es tolerante y
// un valor imparseable termina como violación de campo, no como 400 genérico.
// Chrono es opcional: si falta lo asigna la etapa chrono_assigner.
type CreateInvoiceRequest struct {
	CustomerID string          `json:"customer_id" validate:"required,uuid"`
	Amount     decimal.Decimal `json:"amount"`
	SentAt     any             `json:"sent_at,omitempty"`
	Status     string          `json:"status" validate:"required,oneof=SENT PAID CANCELED"`
	Chrono     int             `json:"chrono,omitempty" validate:"omitempty,gt=0"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id. El chrono no se toca
// por esta vía; para eso existe la operación de incremento.
type UpdateInvoiceRequest struct {
	CustomerID string          `json:"customer_id" validate:"required,uuid"`
	Amount     decimal.Decimal `json:"amount"`
	SentAt     any             `json:"sent_at,omitempty"`
	Status     string          `json:"status" validate:"required,oneof=SENT PAID CANCELED"`
}

// InvoiceResponse factura en respuestas. SentAt sale en el formato por defecto
// del normalizador (RFC 3339).
type InvoiceResponse struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	SentAt     string          `json:"sent_at"`
	Status     string          `json:"status"`
	Chrono     int             `json:"chrono"`
}

// IncrementResponse salida de POST /api/invoices/:id/increment. ParamID solo
// se llena con INCREMENT_DEBUG_ECHO activo.
type IncrementResponse struct {
	ID      string `json:"id"`
	Chrono  int    `json:"chrono"`
	Message string `json:"message"`
	ParamID string `json:"paramid,omitempty"`
}

// InvoiceListQuery orden del listado de facturas (por defecto amount asc).
type InvoiceListQuery struct {
	OrderBy string `query:"order_by" validate:"omitempty,oneof=amount sent_at"`
	Dir     string `query:"dir" validate:"omitempty,oneof=asc desc"`
	PageRequest
}
