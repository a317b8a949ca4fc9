package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tradenest-api/internal/application/catalog"
	"github.com/jhoicas/tradenest-api/internal/application/dto"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/infrastructure/memory"
)

func TestLocationUseCase_Register(t *testing.T) {
	ctx := context.Background()
	uc := catalog.NewLocationUseCase(memory.NewStore().Repositories().Locations)

	// Caso 1: ID generado y activa por defecto
	out, err := uc.Register(ctx, dto.RegisterLocationRequest{Kind: "Outlet", Name: " Tienda Sur "})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "outlet", out.Kind)
	assert.Equal(t, "Tienda Sur", out.Name)
	assert.True(t, out.IsActive)

	got, err := uc.Get(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Name, got.Name)

	// Caso 2: ID explícito repetido
	_, err = uc.Register(ctx, dto.RegisterLocationRequest{ID: "WH-1", Kind: "warehouse", Name: "Bodega"})
	require.NoError(t, err)
	_, err = uc.Register(ctx, dto.RegisterLocationRequest{ID: "WH-1", Kind: "warehouse", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Caso 3: tipo desconocido
	_, err = uc.Register(ctx, dto.RegisterLocationRequest{Kind: "truck", Name: "Camión"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
