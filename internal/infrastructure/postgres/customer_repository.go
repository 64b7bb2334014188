package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// customerOrderColumns columnas permitidas para ORDER BY en listados.
var customerOrderColumns = map[string]string{
	"first_name": "c.first_name",
	"last_name":  "c.last_name",
	"company":    "c.company",
	"created_at": "c.created_at",
}

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	query := `
		INSERT INTO customers (id, user_id, first_name, last_name, email, company, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.UserID, customer.FirstName, customer.LastName, customer.Email, customer.Company,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `
		SELECT id, user_id, first_name, last_name, email, company, created_at, updated_at
		FROM customers WHERE id = $1`
	var c entity.Customer
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Company, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// ListByUser lista los clientes del usuario con búsqueda parcial, orden y
// paginación. Cada fila incluye los agregados de facturación: total facturado
// y monto pendiente (facturas en SENT).
func (r *CustomerRepo) ListByUser(userID string, opts repository.CustomerListOptions) ([]*entity.Customer, error) {
	orderCol, ok := customerOrderColumns[opts.OrderBy]
	if !ok {
		orderCol = "c.created_at"
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.user_id, c.first_name, c.last_name, c.email, c.company, c.created_at, c.updated_at,
		       COALESCE(SUM(i.amount), 0) AS total_amount,
		       COALESCE(SUM(i.amount) FILTER (WHERE i.status = 'SENT'), 0) AS unpaid_amount
		FROM customers c
		LEFT JOIN invoices i ON i.customer_id = c.id
		WHERE c.user_id = $1
		  AND ($2 = '' OR c.first_name ILIKE '%%' || $2 || '%%'
		               OR c.last_name ILIKE '%%' || $2 || '%%'
		               OR c.company ILIKE '%%' || $2 || '%%')
		GROUP BY c.id
		ORDER BY %s %s
		LIMIT $3 OFFSET $4`, orderCol, dir)

	rows, err := r.q.Query(context.Background(), query, userID, opts.Search, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Company,
			&c.CreatedAt, &c.UpdatedAt, &c.TotalAmount, &c.UnpaidAmount); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza un cliente. El user_id no cambia por esta vía.
func (r *CustomerRepo) Update(customer *entity.Customer) error {
	query := `
		UPDATE customers SET first_name = $2, last_name = $3, email = $4, company = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.FirstName, customer.LastName, customer.Email, customer.Company, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete elimina un cliente por ID (sus facturas caen por ON DELETE CASCADE).
func (r *CustomerRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}
