package billing

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jhoicas/facturas-api/internal/application/dto"
	"github.com/jhoicas/facturas-api/internal/application/lifecycle"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
)

// CustomerUseCase casos de uso de clientes. Todas las operaciones están
// acotadas al principal: un usuario solo ve y toca sus propios clientes.
type CustomerUseCase struct {
	customers repository.CustomerRepository
	pipeline  *lifecycle.Pipeline
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(customers repository.CustomerRepository, pipeline *lifecycle.Pipeline) *CustomerUseCase {
	return &CustomerUseCase{customers: customers, pipeline: pipeline}
}

// Create crea un cliente para el principal. El user_id del payload se ignora:
// la etapa owner_assigner lo pisa con el principal autenticado.
func (uc *CustomerUseCase) Create(userID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if violations := dto.Validate(in); violations != nil {
		return nil, &dto.ValidationFailed{Violations: violations}
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		UserID:    in.UserID, // lo que traiga el payload; owner_assigner decide
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Company:   in.Company,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req := lifecycle.Request{Kind: lifecycle.KindCustomer, Method: http.MethodPost, UserID: userID}
	if err := uc.pipeline.Run(req, customer); err != nil {
		return nil, err
	}
	if err := uc.customers.Create(customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetByID obtiene un cliente del principal (404 si no existe, 403 si es de otro).
func (uc *CustomerUseCase) GetByID(userID, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.resolveOwned(userID, id)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// List lista los clientes del principal con búsqueda parcial y orden.
func (uc *CustomerUseCase) List(userID string, q dto.CustomerListQuery) ([]*dto.CustomerResponse, error) {
	if violations := dto.Validate(q); violations != nil {
		return nil, &dto.ValidationFailed{Violations: violations}
	}
	q.DefaultPage()
	list, err := uc.customers.ListByUser(userID, repository.CustomerListOptions{
		Search:  q.Search,
		OrderBy: q.OrderBy,
		Desc:    q.Dir == "desc",
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(c *entity.Customer, _ int) *dto.CustomerResponse {
		return toCustomerResponse(c)
	}), nil
}

// Update actualiza un cliente del principal. El dueño no cambia por esta vía.
func (uc *CustomerUseCase) Update(userID, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if violations := dto.Validate(in); violations != nil {
		return nil, &dto.ValidationFailed{Violations: violations}
	}
	customer, err := uc.resolveOwned(userID, id)
	if err != nil {
		return nil, err
	}
	customer.FirstName = in.FirstName
	customer.LastName = in.LastName
	customer.Email = in.Email
	customer.Company = in.Company
	customer.UpdatedAt = time.Now()
	if err := uc.customers.Update(customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// Delete elimina un cliente del principal.
func (uc *CustomerUseCase) Delete(userID, id string) error {
	if _, err := uc.resolveOwned(userID, id); err != nil {
		return err
	}
	return uc.customers.Delete(id)
}

// resolveOwned carga el cliente y verifica la propiedad.
func (uc *CustomerUseCase) resolveOwned(userID, id string) (*entity.Customer, error) {
	customer, err := uc.customers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return customer, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:           c.ID,
		UserID:       c.UserID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		Company:      c.Company,
		TotalAmount:  c.TotalAmount,
		UnpaidAmount: c.UnpaidAmount,
	}
}
