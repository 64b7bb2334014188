// seed puebla la base de datos con datos de prueba: un admin, 10 usuarios,
// entre 5 y 20 clientes por usuario y entre 1 y 5 facturas por cliente.
// El chrono es un contador por usuario que arranca en 1.
//
// Uso: go run ./cmd/seed (toma la conexión de las mismas env vars que el API).
// Todas las cuentas quedan con password "password".
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/facturas-api/internal/domain/entity"
	"github.com/jhoicas/facturas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/facturas-api/pkg/config"
	"github.com/jhoicas/facturas-api/pkg/logger"
)

var firstNames = []string{
	"Camille", "Louis", "Jeanne", "Hugo", "Margaux", "Antoine", "Chloé", "Lucas",
	"Manon", "Nathan", "Lucie", "Gabriel", "Inès", "Raphaël", "Julia", "Arthur",
}

var lastNames = []string{
	"Lefebvre", "Moreau", "Garnier", "Dubois", "Lambert", "Rousseau", "Fontaine",
	"Chevalier", "Renard", "Mercier", "Blanchard", "Barbier", "Gauthier", "Perrot",
}

var companies = []string{
	"", "", "", "Atelier Nord", "Studio Lumen", "Maison Verte", "Bureau 21", "",
}

var statuses = []string{entity.StatusSent, entity.StatusPaid, entity.StatusCanceled}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Un solo hash para todas las cuentas; bcrypt es caro y el password es el mismo.
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hashear password de seed")
	}

	now := time.Now()

	admin := &entity.User{
		ID:           uuid.New().String(),
		FirstName:    "Admin",
		LastName:     "Admin",
		Email:        "admin@myepse.be",
		PasswordHash: string(passwordHash),
		Role:         entity.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(admin); err != nil {
		log.Fatal().Err(err).Msg("insertar admin")
	}

	totalCustomers, totalInvoices := 0, 0
	for u := 0; u < 10; u++ {
		chrono := 1
		user := &entity.User{
			ID:           uuid.New().String(),
			FirstName:    pick(rng, firstNames),
			LastName:     pick(rng, lastNames),
			Email:        randomEmail(rng, u),
			PasswordHash: string(passwordHash),
			Role:         entity.RoleUser,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := userRepo.Create(user); err != nil {
			log.Fatal().Err(err).Msg("insertar usuario")
		}

		nCustomers := 5 + rng.Intn(16) // 5..20
		for c := 0; c < nCustomers; c++ {
			customer := &entity.Customer{
				ID:        uuid.New().String(),
				UserID:    user.ID,
				FirstName: pick(rng, firstNames),
				LastName:  pick(rng, lastNames),
				Email:     randomEmail(rng, u*100+c),
				Company:   pick(rng, companies),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := customerRepo.Create(customer); err != nil {
				log.Fatal().Err(err).Msg("insertar cliente")
			}
			totalCustomers++

			nInvoices := 1 + rng.Intn(5) // 1..5
			for i := 0; i < nInvoices; i++ {
				invoice := &entity.Invoice{
					ID:         uuid.New().String(),
					CustomerID: customer.ID,
					Amount:     randomAmount(rng),
					SentAt:     randomSentAt(rng, now),
					Status:     pick(rng, statuses),
					Chrono:     chrono,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				chrono++
				if err := invoiceRepo.Create(invoice); err != nil {
					log.Fatal().Err(err).Msg("insertar factura")
				}
				totalInvoices++
			}
		}
	}

	log.Info().
		Int("usuarios", 11).
		Int("clientes", totalCustomers).
		Int("facturas", totalInvoices).
		Msg("seed completado")
}

func pick(rng *rand.Rand, list []string) string {
	return list[rng.Intn(len(list))]
}

// randomEmail genera un email único y estable por índice.
func randomEmail(rng *rand.Rand, idx int) string {
	first := strings.ToLower(pick(rng, firstNames))
	last := strings.ToLower(pick(rng, lastNames))
	return fmt.Sprintf("%s.%s%d@example.org", stripAccents(first), stripAccents(last), idx)
}

// randomAmount monto entre 250 y 5000 con dos decimales.
func randomAmount(rng *rand.Rand) decimal.Decimal {
	cents := 25000 + rng.Intn(500000-25000+1)
	return decimal.New(int64(cents), -2)
}

// randomSentAt fecha aleatoria dentro de los últimos 6 meses.
func randomSentAt(rng *rand.Rand, now time.Time) time.Time {
	windowSecs := int64(182 * 24 * 3600)
	return now.Add(-time.Duration(rng.Int63n(windowSecs)) * time.Second)
}

func stripAccents(s string) string {
	replacer := strings.NewReplacer("é", "e", "è", "e", "ë", "e", "ï", "i", "ô", "o", "ç", "c", "á", "a")
	return replacer.Replace(s)
}
