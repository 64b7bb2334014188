package billing

import (
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jhoicas/facturas-api/internal/application/dto"
	"github.com/jhoicas/facturas-api/internal/application/lifecycle"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
	"github.com/jhoicas/facturas-api/pkg/datetime"
)

// InvoiceUseCase casos de uso de facturas: CRUD acotado al principal, la
// operación de incremento de chrono y la denormalización tolerante de sent_at.
type InvoiceUseCase struct {
	invoices  repository.InvoiceRepository
	customers repository.CustomerRepository
	pipeline  *lifecycle.Pipeline
	dates     *datetime.Normalizer
}

// NewInvoiceUseCase construye el caso de uso. El normalizador sale con formato
// por defecto RFC 3339 (el formato de salida del API).
func NewInvoiceUseCase(invoices repository.InvoiceRepository, customers repository.CustomerRepository, pipeline *lifecycle.Pipeline) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoices:  invoices,
		customers: customers,
		pipeline:  pipeline,
		dates:     datetime.NewNormalizer(datetime.Config{}),
	}
}

// Create crea una factura para un cliente del principal. El chrono y el
// sent_at por defecto los pone la etapa chrono_assigner.
func (uc *InvoiceUseCase) Create(userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	violations := dto.Validate(in)
	sentAt, sentAtViolation := uc.denormalizeSentAt(in.SentAt)
	if sentAtViolation != nil {
		violations = append(violations, *sentAtViolation)
	}
	if in.Amount.IsZero() || in.Amount.IsNegative() {
		violations = append(violations, dto.FieldViolation{Field: "amount", Message: "el monto es obligatorio y debe ser mayor que 0"})
	}
	if violations != nil {
		return nil, &dto.ValidationFailed{Violations: violations}
	}

	customer, err := uc.customers.GetByID(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.UserID != userID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	invoice := &entity.Invoice{
		ID:         uuid.New().String(),
		CustomerID: in.CustomerID,
		Amount:     in.Amount,
		SentAt:     sentAt,
		Status:     in.Status,
		Chrono:     in.Chrono,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	req := lifecycle.Request{Kind: lifecycle.KindInvoice, Method: http.MethodPost, UserID: userID}
	if err := uc.pipeline.Run(req, invoice); err != nil {
		return nil, err
	}
	if err := uc.invoices.Create(invoice); err != nil {
		return nil, err
	}
	return uc.toInvoiceResponse(invoice), nil
}

// GetByID obtiene una factura del principal.
func (uc *InvoiceUseCase) GetByID(userID, id string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.resolveOwned(userID, id)
	if err != nil {
		return nil, err
	}
	return uc.toInvoiceResponse(invoice), nil
}

// List lista las facturas del principal, por defecto ordenadas por monto asc.
func (uc *InvoiceUseCase) List(userID string, q dto.InvoiceListQuery) ([]*dto.InvoiceResponse, error) {
	if violations := dto.Validate(q); violations != nil {
		return nil, &dto.ValidationFailed{Violations: violations}
	}
	q.DefaultPage()
	list, err := uc.invoices.ListByUser(userID, repository.InvoiceListOptions{
		OrderBy: q.OrderBy,
		Desc:    q.Dir == "desc",
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(i *entity.Invoice, _ int) *dto.InvoiceResponse {
		return uc.toInvoiceResponse(i)
	}), nil
}

// ListByCustomer lista las facturas de un cliente del principal
// (GET /api/customers/:id/invoices).
func (uc *InvoiceUseCase) ListByCustomer(userID, customerID string) ([]*dto.InvoiceResponse, error) {
	customer, err := uc.customers.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.UserID != userID {
		return nil, domain.ErrForbidden
	}
	list, err := uc.invoices.ListByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(i *entity.Invoice, _ int) *dto.InvoiceResponse {
		return uc.toInvoiceResponse(i)
	}), nil
}

// Update actualiza una factura del principal. El chrono no cambia por esta vía.
func (uc *InvoiceUseCase) Update(userID, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	violations := dto.Validate(in)
	sentAt, sentAtViolation := uc.denormalizeSentAt(in.SentAt)
	if sentAtViolation != nil {
		violations = append(violations, *sentAtViolation)
	}
	if in.Amount.IsZero() || in.Amount.IsNegative() {
		violations = append(violations, dto.FieldViolation{Field: "amount", Message: "el monto es obligatorio y debe ser mayor que 0"})
	}
	if violations != nil {
		return nil, &dto.ValidationFailed{Violations: violations}
	}

	invoice, err := uc.resolveOwned(userID, id)
	if err != nil {
		return nil, err
	}
	// Reasignar a otro cliente solo dentro del mismo dueño.
	if in.CustomerID != invoice.CustomerID {
		target, err := uc.customers.GetByID(in.CustomerID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, domain.ErrNotFound
		}
		if target.UserID != userID {
			return nil, domain.ErrForbidden
		}
		invoice.CustomerID = in.CustomerID
	}
	invoice.Amount = in.Amount
	if !sentAt.IsZero() {
		invoice.SentAt = sentAt
	}
	invoice.Status = in.Status
	invoice.UpdatedAt = time.Now()
	if err := uc.invoices.Update(invoice); err != nil {
		return nil, err
	}
	return uc.toInvoiceResponse(invoice), nil
}

// Delete elimina una factura del principal.
func (uc *InvoiceUseCase) Delete(userID, id string) error {
	if _, err := uc.resolveOwned(userID, id); err != nil {
		return err
	}
	return uc.invoices.Delete(id)
}

// Increment suma exactamente 1 al chrono de la factura y lo persiste. No hay
// verificación de unicidad del chrono resultante: es una operación mínima sin
// lógica compensatoria.
func (uc *InvoiceUseCase) Increment(userID, id string) (*dto.IncrementResponse, error) {
	invoice, err := uc.resolveOwned(userID, id)
	if err != nil {
		return nil, err
	}
	invoice.Chrono++
	if err := uc.invoices.UpdateChrono(invoice.ID, invoice.Chrono); err != nil {
		return nil, err
	}
	return &dto.IncrementResponse{
		ID:      invoice.ID,
		Chrono:  invoice.Chrono,
		Message: "chrono de la factura incrementado correctamente",
	}, nil
}

// denormalizeSentAt interpreta el sent_at crudo del payload con el escape
// leniente activo: un valor imparseable pasa crudo y se convierte aquí en
// violación de campo en lugar de error fatal. nil significa "sin fecha" y lo
// resuelve la etapa chrono_assigner.
func (uc *InvoiceUseCase) denormalizeSentAt(raw any) (time.Time, *dto.FieldViolation) {
	if raw == nil {
		return time.Time{}, nil
	}
	ctx := datetime.Config{DisableTypeEnforcement: true}
	// El wire acepta segundos de época; los números JSON llegan como float64 y
	// el formato de época se elige según traigan fracción o no.
	switch v := raw.(type) {
	case float64:
		if v == math.Trunc(v) {
			ctx.Format = datetime.LayoutEpoch
		} else {
			ctx.Format = datetime.LayoutEpochMicro
		}
	case int, int32, int64:
		ctx.Format = datetime.LayoutEpoch
	}
	out, err := uc.dates.Denormalize(raw, ctx)
	if err != nil {
		return time.Time{}, &dto.FieldViolation{Field: "sent_at", Message: "se esperaba una fecha (cadena o segundos de época)"}
	}
	t, ok := out.(time.Time)
	if !ok {
		return time.Time{}, &dto.FieldViolation{Field: "sent_at", Message: "la fecha debe tener un formato válido (ej. YYYY-MM-DD o RFC 3339)"}
	}
	return t, nil
}

// resolveOwned carga la factura y verifica que el cliente pertenezca al principal.
func (uc *InvoiceUseCase) resolveOwned(userID, id string) (*entity.Invoice, error) {
	invoice, err := uc.invoices.GetByID(id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	customer, err := uc.customers.GetByID(invoice.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return invoice, nil
}

func (uc *InvoiceUseCase) toInvoiceResponse(i *entity.Invoice) *dto.InvoiceResponse {
	sentAt, _ := uc.dates.Normalize(i.SentAt, datetime.Config{})
	s, _ := sentAt.(string)
	return &dto.InvoiceResponse{
		ID:         i.ID,
		CustomerID: i.CustomerID,
		Amount:     i.Amount,
		SentAt:     s,
		Status:     i.Status,
		Chrono:     i.Chrono,
	}
}
