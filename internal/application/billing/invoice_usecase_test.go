package billing

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturas-api/internal/application/dto"
	"github.com/jhoicas/facturas-api/internal/application/lifecycle"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memCustomerRepo struct {
	items map[string]*entity.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{items: map[string]*entity.Customer{}}
}

func (r *memCustomerRepo) Create(c *entity.Customer) error {
	r.items[c.ID] = c
	return nil
}

func (r *memCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return r.items[id], nil
}

func (r *memCustomerRepo) ListByUser(userID string, _ repository.CustomerListOptions) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCustomerRepo) Update(c *entity.Customer) error {
	r.items[c.ID] = c
	return nil
}

func (r *memCustomerRepo) Delete(id string) error {
	delete(r.items, id)
	return nil
}

type memInvoiceRepo struct {
	items     map[string]*entity.Invoice
	customers *memCustomerRepo
}

func newMemInvoiceRepo(customers *memCustomerRepo) *memInvoiceRepo {
	return &memInvoiceRepo{items: map[string]*entity.Invoice{}, customers: customers}
}

func (r *memInvoiceRepo) Create(i *entity.Invoice) error {
	r.items[i.ID] = i
	return nil
}

func (r *memInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	return r.items[id], nil
}

func (r *memInvoiceRepo) ListByUser(userID string, _ repository.InvoiceListOptions) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, i := range r.items {
		if c := r.customers.items[i.CustomerID]; c != nil && c.UserID == userID {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Amount.LessThan(out[b].Amount) })
	return out, nil
}

func (r *memInvoiceRepo) ListByCustomer(customerID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, i := range r.items {
		if i.CustomerID == customerID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) Update(i *entity.Invoice) error {
	r.items[i.ID] = i
	return nil
}

func (r *memInvoiceRepo) UpdateChrono(id string, chrono int) error {
	i, ok := r.items[id]
	if !ok {
		return errors.New("factura inexistente")
	}
	i.Chrono = chrono
	return nil
}

func (r *memInvoiceRepo) Delete(id string) error {
	delete(r.items, id)
	return nil
}

func (r *memInvoiceRepo) FindMaxChronoForUser(userID string) (int, bool, error) {
	max, found := 0, false
	for _, i := range r.items {
		c := r.customers.items[i.CustomerID]
		if c == nil || c.UserID != userID {
			continue
		}
		found = true
		if i.Chrono > max {
			max = i.Chrono
		}
	}
	return max, found, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	ownerID    = "11111111-1111-1111-1111-111111111111"
	strangerID = "22222222-2222-2222-2222-222222222222"
	custA      = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	custB      = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

func buildUseCase(t *testing.T) (*InvoiceUseCase, *memInvoiceRepo, *memCustomerRepo) {
	t.Helper()
	customers := newMemCustomerRepo()
	invoices := newMemInvoiceRepo(customers)

	require.NoError(t, customers.Create(&entity.Customer{ID: custA, UserID: ownerID, FirstName: "Ana", LastName: "Prieto", Email: "ana@example.com"}))
	require.NoError(t, customers.Create(&entity.Customer{ID: custB, UserID: ownerID, FirstName: "Luc", LastName: "Martin", Email: "luc@example.com"}))

	pipeline := lifecycle.NewPipeline(nil, lifecycle.NewChronoAssigner(invoices))
	return NewInvoiceUseCase(invoices, customers, pipeline), invoices, customers
}

func seedInvoice(t *testing.T, repo *memInvoiceRepo, id, customerID string, chrono int) {
	t.Helper()
	require.NoError(t, repo.Create(&entity.Invoice{
		ID:         id,
		CustomerID: customerID,
		Amount:     decimal.NewFromInt(100),
		SentAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:     entity.StatusSent,
		Chrono:     chrono,
	}))
}

func validCreate(customerID string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		CustomerID: customerID,
		Amount:     decimal.NewFromFloat(1250.50),
		SentAt:     "2024-03-01",
		Status:     entity.StatusSent,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Asignación de chrono en la creación
// ──────────────────────────────────────────────────────────────────────────────

// Facturas {1,2,3} repartidas entre dos clientes del mismo usuario: la nueva
// recibe chrono 4.
func TestCreate_ChronoSigueAlMaximoDelUsuario(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)
	seedInvoice(t, invoices, "f-1", custA, 1)
	seedInvoice(t, invoices, "f-2", custA, 2)
	seedInvoice(t, invoices, "f-3", custB, 3)

	out, err := uc.Create(ownerID, validCreate(custA))

	require.NoError(t, err)
	assert.Equal(t, 4, out.Chrono, "el chrono se calcula sobre TODAS las facturas del usuario, no solo las del cliente")
}

// Usuario sin facturas: la primera recibe chrono 1.
func TestCreate_PrimeraFacturaRecibeUno(t *testing.T) {
	uc, _, _ := buildUseCase(t)

	out, err := uc.Create(ownerID, validCreate(custA))

	require.NoError(t, err)
	assert.Equal(t, 1, out.Chrono)
}

// Un chrono enviado por el caller se respeta.
func TestCreate_ChronoDelCallerSeRespeta(t *testing.T) {
	uc, _, _ := buildUseCase(t)
	in := validCreate(custA)
	in.Chrono = 99

	out, err := uc.Create(ownerID, in)

	require.NoError(t, err)
	assert.Equal(t, 99, out.Chrono)
}

// Sin sent_at, la factura sale con la fecha de hoy y el wire la muestra RFC 3339.
func TestCreate_SentAtPorDefectoEsHoy(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)
	in := validCreate(custA)
	in.SentAt = nil

	out, err := uc.Create(ownerID, in)

	require.NoError(t, err)
	stored := invoices.items[out.ID]
	now := time.Now()
	assert.Equal(t, now.Year(), stored.SentAt.Year())
	assert.Equal(t, now.YearDay(), stored.SentAt.YearDay())
	assert.Equal(t, 0, stored.SentAt.Hour(), "la fecha por defecto es solo fecha, a medianoche")
	assert.NotEmpty(t, out.SentAt)
}

// ──────────────────────────────────────────────────────────────────────────────
// Denormalización de sent_at
// ──────────────────────────────────────────────────────────────────────────────

// sent_at como fecha sin hora queda a medianoche.
func TestCreate_SentAtFechaSinHora(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)

	out, err := uc.Create(ownerID, validCreate(custA))

	require.NoError(t, err)
	stored := invoices.items[out.ID]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), stored.SentAt.UTC())
}

// sent_at como segundos de época (número JSON) se acepta.
func TestCreate_SentAtEpoca(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)
	in := validCreate(custA)
	in.SentAt = float64(1700000000) // así llega un número por JSON

	out, err := uc.Create(ownerID, in)

	require.NoError(t, err)
	stored := invoices.items[out.ID]
	assert.Equal(t, int64(1700000000), stored.SentAt.Unix())
}

// sent_at imparseable no es fatal: el escape leniente lo deja pasar crudo y
// aquí se convierte en violación de campo.
func TestCreate_SentAtImparseableEsViolacionDeCampo(t *testing.T) {
	uc, _, _ := buildUseCase(t)
	in := validCreate(custA)
	in.SentAt = "fecha-imposible"

	_, err := uc.Create(ownerID, in)

	var vf *dto.ValidationFailed
	require.ErrorAs(t, err, &vf)
	require.Len(t, vf.Violations, 1)
	assert.Equal(t, "sent_at", vf.Violations[0].Field)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y propiedad
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ValidacionDeCampos(t *testing.T) {
	uc, _, _ := buildUseCase(t)

	_, err := uc.Create(ownerID, dto.CreateInvoiceRequest{
		CustomerID: "no-es-uuid",
		Status:     "ENVIADA",
	})

	var vf *dto.ValidationFailed
	require.ErrorAs(t, err, &vf)

	fields := map[string]bool{}
	for _, v := range vf.Violations {
		fields[v.Field] = true
	}
	assert.True(t, fields["customer_id"], "customer_id inválido debe reportarse")
	assert.True(t, fields["status"], "status fuera del enum debe reportarse")
	assert.True(t, fields["amount"], "amount ausente debe reportarse")
}

func TestCreate_ClienteInexistente(t *testing.T) {
	uc, _, _ := buildUseCase(t)
	in := validCreate("cccccccc-cccc-cccc-cccc-cccccccccccc")

	_, err := uc.Create(ownerID, in)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_ClienteDeOtroUsuario(t *testing.T) {
	uc, _, _ := buildUseCase(t)

	_, err := uc.Create(strangerID, validCreate(custA))

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Incremento de chrono
// ──────────────────────────────────────────────────────────────────────────────

// Incrementar una factura con chrono 5 deja 6, persistido.
func TestIncrement_SumaUnoYPersiste(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)
	seedInvoice(t, invoices, "f-5", custA, 5)

	out, err := uc.Increment(ownerID, "f-5")

	require.NoError(t, err)
	assert.Equal(t, 6, out.Chrono)
	assert.Equal(t, "f-5", out.ID)
	assert.NotEmpty(t, out.Message)
	assert.Equal(t, 6, invoices.items["f-5"].Chrono, "el nuevo chrono debe quedar persistido")
}

// El incremento no valida unicidad: puede dejar chronos duplicados a propósito.
func TestIncrement_NoValidaUnicidad(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)
	seedInvoice(t, invoices, "f-1", custA, 1)
	seedInvoice(t, invoices, "f-2", custB, 2)

	_, err := uc.Increment(ownerID, "f-1")

	require.NoError(t, err)
	assert.Equal(t, invoices.items["f-1"].Chrono, invoices.items["f-2"].Chrono)
}

func TestIncrement_FacturaInexistente(t *testing.T) {
	uc, _, _ := buildUseCase(t)

	_, err := uc.Increment(ownerID, "no-existe")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIncrement_FacturaDeOtroUsuario(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)
	seedInvoice(t, invoices, "f-1", custA, 1)

	_, err := uc.Increment(strangerID, "f-1")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas y subrecurso
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByID_FormateaSentAtRFC3339(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)
	seedInvoice(t, invoices, "f-1", custA, 1)

	out, err := uc.GetByID(ownerID, "f-1")

	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00:00Z", out.SentAt)
}

func TestListByCustomer_SoloLasDelCliente(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)
	seedInvoice(t, invoices, "f-1", custA, 1)
	seedInvoice(t, invoices, "f-2", custB, 2)

	out, err := uc.ListByCustomer(ownerID, custA)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "f-1", out[0].ID)
}

func TestUpdate_NoTocaElChrono(t *testing.T) {
	uc, invoices, _ := buildUseCase(t)
	seedInvoice(t, invoices, "f-1", custA, 7)

	out, err := uc.Update(ownerID, "f-1", dto.UpdateInvoiceRequest{
		CustomerID: custA,
		Amount:     decimal.NewFromInt(900),
		Status:     entity.StatusPaid,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, out.Chrono)
	assert.Equal(t, entity.StatusPaid, invoices.items["f-1"].Status)
}

func TestUpdate_NoReasignaAClienteAjeno(t *testing.T) {
	uc, invoices, customers := buildUseCase(t)
	seedInvoice(t, invoices, "f-1", custA, 1)
	require.NoError(t, customers.Create(&entity.Customer{
		ID: "dddddddd-dddd-dddd-dddd-dddddddddddd", UserID: strangerID,
		FirstName: "Eva", LastName: "Ruiz", Email: "eva@example.com",
	}))

	_, err := uc.Update(ownerID, "f-1", dto.UpdateInvoiceRequest{
		CustomerID: "dddddddd-dddd-dddd-dddd-dddddddddddd",
		Amount:     decimal.NewFromInt(100),
		Status:     entity.StatusSent,
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}
