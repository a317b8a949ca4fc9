package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository sobre PostgreSQL (pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create registra una ubicación.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO locations (id, kind, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, string(l.Kind), l.Name, l.IsActive, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ubicación %s", domain.ErrDuplicate, l.ID)
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var (
		l    entity.Location
		kind string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, kind, name, is_active, created_at, updated_at
		FROM locations WHERE id = $1`, id,
	).Scan(&l.ID, &kind, &l.Name, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("ubicación %s", id)
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	l.Kind = entity.LocationKind(kind)
	return &l, nil
}
