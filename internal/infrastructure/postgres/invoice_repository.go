package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// invoiceOrderColumns columnas permitidas para ORDER BY en listados.
var invoiceOrderColumns = map[string]string{
	"amount":  "i.amount",
	"sent_at": "i.sent_at",
}

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste una nueva factura.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, customer_id, amount, sent_at, status, chrono, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.CustomerID, invoice.Amount, invoice.SentAt, invoice.Status, invoice.Chrono,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `
		SELECT id, customer_id, amount, sent_at, status, chrono, created_at, updated_at
		FROM invoices WHERE id = $1`
	var i entity.Invoice
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&i.ID, &i.CustomerID, &i.Amount, &i.SentAt, &i.Status, &i.Chrono, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &i, nil
}

// ListByUser lista las facturas de todos los clientes del usuario, con orden y
// paginación. Orden por defecto: monto ascendente.
func (r *InvoiceRepo) ListByUser(userID string, opts repository.InvoiceListOptions) ([]*entity.Invoice, error) {
	orderCol, ok := invoiceOrderColumns[opts.OrderBy]
	if !ok {
		orderCol = "i.amount"
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT i.id, i.customer_id, i.amount, i.sent_at, i.status, i.chrono, i.created_at, i.updated_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE c.user_id = $1
		ORDER BY %s %s
		LIMIT $2 OFFSET $3`, orderCol, dir)

	rows, err := r.q.Query(context.Background(), query, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	return scanInvoices(rows)
}

// ListByCustomer lista las facturas de un cliente, en orden de chrono.
func (r *InvoiceRepo) ListByCustomer(customerID string) ([]*entity.Invoice, error) {
	query := `
		SELECT id, customer_id, amount, sent_at, status, chrono, created_at, updated_at
		FROM invoices WHERE customer_id = $1 ORDER BY chrono`
	rows, err := r.q.Query(context.Background(), query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list invoices by customer: %w", err)
	}
	defer rows.Close()
	return scanInvoices(rows)
}

// Update actualiza una factura. El chrono no cambia por esta vía.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices SET customer_id = $2, amount = $3, sent_at = $4, status = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.CustomerID, invoice.Amount, invoice.SentAt, invoice.Status, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// UpdateChrono persiste únicamente el chrono (operación de incremento).
func (r *InvoiceRepo) UpdateChrono(id string, chrono int) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE invoices SET chrono = $2, updated_at = now() WHERE id = $1`, id, chrono)
	if err != nil {
		return fmt.Errorf("update invoice chrono: %w", err)
	}
	return nil
}

// Delete elimina una factura por ID.
func (r *InvoiceRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// FindMaxChronoForUser devuelve el chrono máximo entre las facturas de todos
// los clientes del usuario. ok=false cuando el usuario no tiene facturas.
func (r *InvoiceRepo) FindMaxChronoForUser(userID string) (int, bool, error) {
	query := `
		SELECT MAX(i.chrono)
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE c.user_id = $1`
	var max *int
	err := r.q.QueryRow(context.Background(), query, userID).Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("max chrono for user: %w", err)
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

func scanInvoices(rows pgx.Rows) ([]*entity.Invoice, error) {
	var list []*entity.Invoice
	for rows.Next() {
		var i entity.Invoice
		if err := rows.Scan(&i.ID, &i.CustomerID, &i.Amount, &i.SentAt, &i.Status, &i.Chrono,
			&i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}
