package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/tradenest-api/internal/application/dto"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

// LocationUseCase registro de identidades de bodegas y puntos de venta.
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// Register crea la identidad de una ubicación. Activa por defecto.
func (uc *LocationUseCase) Register(ctx context.Context, in dto.RegisterLocationRequest) (*dto.LocationResponse, error) {
	kind := entity.LocationKind(strings.ToLower(strings.TrimSpace(in.Kind)))
	if !kind.Valid() {
		return nil, domain.Invalid("tipo de ubicación %q no soportado", in.Kind)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("el nombre es obligatorio")
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.New().String()
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := time.Now()
	loc := &entity.Location{
		ID:        id,
		Kind:      kind,
		Name:      strings.TrimSpace(in.Name),
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// Get resuelve una ubicación por ID.
func (uc *LocationUseCase) Get(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:        l.ID,
		Kind:      string(l.Kind),
		Name:      l.Name,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
