package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturas-api/internal/application/dto"
	"github.com/jhoicas/facturas-api/internal/application/lifecycle"
	"github.com/jhoicas/facturas-api/internal/domain"
	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

func buildCustomerUseCase(t *testing.T) (*CustomerUseCase, *memCustomerRepo) {
	t.Helper()
	customers := newMemCustomerRepo()
	pipeline := lifecycle.NewPipeline(nil, lifecycle.NewOwnerAssigner())
	return NewCustomerUseCase(customers, pipeline), customers
}

// El user_id del payload se ignora: el dueño siempre es el principal.
func TestCustomerCreate_ElDuenoEsElPrincipal(t *testing.T) {
	uc, customers := buildCustomerUseCase(t)

	out, err := uc.Create(ownerID, dto.CreateCustomerRequest{
		FirstName: "Ana",
		LastName:  "Prieto",
		Email:     "ana@example.com",
		UserID:    strangerID, // intento de colar otro dueño
	})

	require.NoError(t, err)
	assert.Equal(t, ownerID, out.UserID, "el user_id del payload debe pisarse con el principal")
	assert.Equal(t, ownerID, customers.items[out.ID].UserID)
}

func TestCustomerCreate_ValidacionDeCampos(t *testing.T) {
	uc, _ := buildCustomerUseCase(t)

	_, err := uc.Create(ownerID, dto.CreateCustomerRequest{
		FirstName: "A", // min=2
		Email:     "no-es-email",
	})

	var vf *dto.ValidationFailed
	require.ErrorAs(t, err, &vf)

	fields := map[string]bool{}
	for _, v := range vf.Violations {
		fields[v.Field] = true
	}
	assert.True(t, fields["first_name"])
	assert.True(t, fields["last_name"])
	assert.True(t, fields["email"])
}

func TestCustomerGetByID_DeOtroUsuarioEsForbidden(t *testing.T) {
	uc, customers := buildCustomerUseCase(t)
	require.NoError(t, customers.Create(&entity.Customer{
		ID: custA, UserID: strangerID,
		FirstName: "Eva", LastName: "Ruiz", Email: "eva@example.com",
	}))

	_, err := uc.GetByID(ownerID, custA)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCustomerGetByID_Inexistente(t *testing.T) {
	uc, _ := buildCustomerUseCase(t)

	_, err := uc.GetByID(ownerID, "no-existe")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerUpdate_NoCambiaElDueno(t *testing.T) {
	uc, customers := buildCustomerUseCase(t)
	require.NoError(t, customers.Create(&entity.Customer{
		ID: custA, UserID: ownerID,
		FirstName: "Ana", LastName: "Prieto", Email: "ana@example.com",
	}))

	out, err := uc.Update(ownerID, custA, dto.UpdateCustomerRequest{
		FirstName: "Ana María",
		LastName:  "Prieto",
		Email:     "ana.maria@example.com",
		Company:   "Atelier Nord",
	})

	require.NoError(t, err)
	assert.Equal(t, ownerID, out.UserID)
	assert.Equal(t, "Ana María", customers.items[custA].FirstName)
	assert.Equal(t, "Atelier Nord", customers.items[custA].Company)
}

func TestCustomerDelete_DeOtroUsuarioEsForbidden(t *testing.T) {
	uc, customers := buildCustomerUseCase(t)
	require.NoError(t, customers.Create(&entity.Customer{
		ID: custA, UserID: strangerID,
		FirstName: "Eva", LastName: "Ruiz", Email: "eva@example.com",
	}))

	err := uc.Delete(ownerID, custA)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.NotNil(t, customers.items[custA], "el cliente ajeno no debe borrarse")
}
