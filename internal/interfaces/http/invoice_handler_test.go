package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturas-api/internal/application/billing"
	"github.com/jhoicas/facturas-api/internal/application/lifecycle"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
	apphttp "github.com/jhoicas/facturas-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria (solo lo que usa el endpoint de incremento)
// ──────────────────────────────────────────────────────────────────────────────

type stubCustomerRepo struct {
	items map[string]*entity.Customer
}

func (r *stubCustomerRepo) Create(c *entity.Customer) error { r.items[c.ID] = c; return nil }
func (r *stubCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return r.items[id], nil
}
func (r *stubCustomerRepo) ListByUser(string, repository.CustomerListOptions) ([]*entity.Customer, error) {
	return nil, nil
}
func (r *stubCustomerRepo) Update(c *entity.Customer) error { r.items[c.ID] = c; return nil }
func (r *stubCustomerRepo) Delete(id string) error          { delete(r.items, id); return nil }

type stubInvoiceRepo struct {
	items map[string]*entity.Invoice
}

func (r *stubInvoiceRepo) Create(i *entity.Invoice) error { r.items[i.ID] = i; return nil }
func (r *stubInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	return r.items[id], nil
}
func (r *stubInvoiceRepo) ListByUser(string, repository.InvoiceListOptions) ([]*entity.Invoice, error) {
	return nil, nil
}
func (r *stubInvoiceRepo) ListByCustomer(string) ([]*entity.Invoice, error) { return nil, nil }
func (r *stubInvoiceRepo) Update(i *entity.Invoice) error                   { r.items[i.ID] = i; return nil }
func (r *stubInvoiceRepo) UpdateChrono(id string, chrono int) error {
	r.items[id].Chrono = chrono
	return nil
}
func (r *stubInvoiceRepo) Delete(id string) error { delete(r.items, id); return nil }
func (r *stubInvoiceRepo) FindMaxChronoForUser(string) (int, bool, error) {
	return 0, false, nil
}

// buildInvoiceApp levanta la API con repos en memoria y una factura sembrada.
func buildInvoiceApp(t *testing.T, debugEcho bool) (*fiber.App, *stubInvoiceRepo) {
	t.Helper()
	customers := &stubCustomerRepo{items: map[string]*entity.Customer{
		"c-1": {ID: "c-1", UserID: testUserID, FirstName: "Ana", LastName: "Prieto", Email: "ana@example.com"},
	}}
	invoices := &stubInvoiceRepo{items: map[string]*entity.Invoice{
		"f-1": {
			ID: "f-1", CustomerID: "c-1",
			Amount: decimal.NewFromInt(100),
			SentAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Status: entity.StatusSent, Chrono: 5,
		},
	}}
	pipeline := lifecycle.NewPipeline(nil, lifecycle.NewChronoAssigner(invoices))
	invoiceUC := billing.NewInvoiceUseCase(invoices, customers, pipeline)

	app := fiber.New()
	app.Post("/api/invoices/:id/increment",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.NewInvoiceHandler(invoiceUC, debugEcho).Increment,
	)
	return app, invoices
}

func postIncrement(t *testing.T, app *fiber.App, id, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/"+id+"/increment", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests POST /api/invoices/:id/increment
// ──────────────────────────────────────────────────────────────────────────────

func TestIncrement_Endpoint_SumaUnoYPersiste(t *testing.T) {
	app, invoices := buildInvoiceApp(t, false)
	resp := postIncrement(t, app, "f-1", tokenForRole(t, "user"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(6), body["chrono"], "chrono 5 debe pasar a 6")
	assert.Equal(t, "f-1", body["id"])
	assert.NotContains(t, body, "paramid", "sin debug echo no debe salir paramid")

	assert.Equal(t, 6, invoices.items["f-1"].Chrono)
}

func TestIncrement_Endpoint_EcoDeParametroConFlag(t *testing.T) {
	app, _ := buildInvoiceApp(t, true)
	resp := postIncrement(t, app, "f-1", tokenForRole(t, "user"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "f-1", body["paramid"], "con INCREMENT_DEBUG_ECHO el parámetro de ruta se devuelve como paramid")
}

func TestIncrement_Endpoint_FacturaInexistente_404(t *testing.T) {
	app, _ := buildInvoiceApp(t, false)
	resp := postIncrement(t, app, "no-existe", tokenForRole(t, "user"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIncrement_Endpoint_SinToken_401(t *testing.T) {
	app, _ := buildInvoiceApp(t, false)
	resp := postIncrement(t, app, "f-1", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
