package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"serialización", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock envuelto", fmt.Errorf("save balance: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"check violado", &pgconn.PgError{Code: "23514"}, false},
		{"error genérico", errors.New("conexión cerrada"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryable(tc.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert product: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
}

func TestLimitOrAll(t *testing.T) {
	assert.Nil(t, limitOrAll(0))
	assert.Equal(t, 50, limitOrAll(50))
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "abc", *nullIfEmpty("abc"))
}

// ────────────────────────────────────────────────────────────────
// IDs mal formados contra columnas UUID
// ────────────────────────────────────────────────────────────────

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID("5f0c6b8e-1d2a-4c3b-9e8f-7a6b5c4d3e2f"))
	assert.False(t, isUUID("abc"))
	assert.False(t, isUUID(""))
}

// Los repositorios responden "no existe" sin llegar a la base: el Querier nil lo demuestra.
func TestRepositorios_IDNoUUIDEsNoEncontrado(t *testing.T) {
	ctx := context.Background()

	// Caso 1: producto por ID y con candado
	_, err := NewProductRepository(nil).GetByID(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = NewProductRepository(nil).GetForUpdate(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Caso 2: traslado y retención
	_, err = NewTransferRepository(nil).GetByID(ctx, "TR-2026-001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = NewHoldRepository(nil).GetForUpdate(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Caso 3: saldo de un producto inexistente se lee en cero
	b, err := NewStockRepository(nil).Get(ctx, "abc", "WH-1")
	require.NoError(t, err)
	assert.Zero(t, b.Quantity)
	assert.Zero(t, b.Version)

	// Caso 4: el diario filtrado por un producto inexistente está vacío
	movs, err := NewStockMovementRepository(nil).List(ctx, repository.MovementFilter{ProductID: "abc"})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestTxOptions_Serializable(t *testing.T) {
	assert.Equal(t, pgx.Serializable, txOptions.IsoLevel)
}
