package lifecycle

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
)

// chronoSource es el contrato mínimo que necesita ChronoAssigner; lo implementa
// repository.InvoiceRepository. La interfaz reducida evita acoplar la etapa al
// puerto completo.
type chronoSource interface {
	FindMaxChronoForUser(userID string) (int, bool, error)
}

// ChronoAssigner asigna el número de secuencia a facturas nuevas:
// 1 + max(chrono) sobre las facturas del usuario, o 1 si no tiene ninguna.
// Si la factura llega sin fecha de envío, la fija a hoy a medianoche.
//
// La lectura del máximo y la escritura posterior no van en una transacción:
// dos creaciones concurrentes para el mismo usuario pueden leer el mismo
// máximo y producir chronos duplicados.
type ChronoAssigner struct {
	invoices chronoSource
	clock    func() time.Time
}

// NewChronoAssigner construye la etapa con el reloj del sistema.
func NewChronoAssigner(invoices chronoSource) *ChronoAssigner {
	return &ChronoAssigner{invoices: invoices, clock: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (s *ChronoAssigner) WithClock(clock func() time.Time) *ChronoAssigner {
	s.clock = clock
	return s
}

func (s *ChronoAssigner) Name() string { return "chrono_assigner" }

// Applies solo en creación de facturas, nunca en actualizaciones.
func (s *ChronoAssigner) Applies(req Request) bool {
	return req.Kind == KindInvoice && req.Method == http.MethodPost
}

func (s *ChronoAssigner) Apply(req Request, payload any) error {
	invoice, ok := payload.(*entity.Invoice)
	if !ok {
		return nil
	}
	if invoice.Chrono == 0 {
		max, found, err := s.invoices.FindMaxChronoForUser(req.UserID)
		if err != nil {
			return fmt.Errorf("buscar chrono máximo: %w", err)
		}
		next := 1
		if found {
			next = max + 1
		}
		invoice.Chrono = next
	}
	if invoice.SentAt.IsZero() {
		now := s.clock()
		invoice.SentAt = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	return nil
}

// OwnerAssigner fija el dueño de un cliente nuevo al principal autenticado,
// pisando cualquier valor que trajera el payload.
type OwnerAssigner struct{}

// NewOwnerAssigner construye la etapa.
func NewOwnerAssigner() *OwnerAssigner { return &OwnerAssigner{} }

func (s *OwnerAssigner) Name() string { return "owner_assigner" }

func (s *OwnerAssigner) Applies(req Request) bool {
	return req.Kind == KindCustomer && req.Method == http.MethodPost
}

func (s *OwnerAssigner) Apply(req Request, payload any) error {
	customer, ok := payload.(*entity.Customer)
	if !ok {
		return nil
	}
	customer.UserID = req.UserID
	return nil
}

// PasswordHasher reemplaza el password en claro de un usuario nuevo por su
// hash bcrypt antes de persistir.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher construye la etapa con el costo bcrypt por defecto.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

func (s *PasswordHasher) Name() string { return "password_hasher" }

func (s *PasswordHasher) Applies(req Request) bool {
	return req.Kind == KindUser && req.Method == http.MethodPost
}

func (s *PasswordHasher) Apply(req Request, payload any) error {
	user, ok := payload.(*entity.User)
	if !ok {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), s.cost)
	if err != nil {
		return fmt.Errorf("hashear password: %w", err)
	}
	user.PasswordHash = string(hash)
	return nil
}
