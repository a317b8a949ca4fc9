// Package cache decora el registro de ubicaciones con una caché read-through en Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/jhoicas/tradenest-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tradenest:location:"

// kv es el subconjunto de *redis.Client que usa la caché.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ repository.LocationRepository = (*LocationRepository)(nil)

// LocationRepository lee primero de Redis y cae al repositorio subyacente.
// Un Redis caído degrada a lecturas directas; nunca hace fallar la operación.
type LocationRepository struct {
	next repository.LocationRepository
	rdb  kv
	ttl  time.Duration
	log  *logger.Logger
}

// NewLocationRepository envuelve next. ttl <= 0 usa 10 minutos.
func NewLocationRepository(next repository.LocationRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *LocationRepository {
	return newLocationRepository(next, rdb, ttl, log)
}

func newLocationRepository(next repository.LocationRepository, rdb kv, ttl time.Duration, log *logger.Logger) *LocationRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LocationRepository{next: next, rdb: rdb, ttl: ttl, log: log}
}

type cachedLocation struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create registra en el repositorio y descarta cualquier entrada previa.
func (r *LocationRepository) Create(ctx context.Context, l *entity.Location) error {
	if err := r.next.Create(ctx, l); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, keyPrefix+l.ID).Err(); err != nil {
		r.log.Warn().Err(err).Str("location_id", l.ID).Msg("no se pudo invalidar la caché de ubicación")
	}
	return nil
}

// GetByID consulta Redis y, si falla o no está, el repositorio. Los NotFound no se cachean.
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	raw, err := r.rdb.Get(ctx, keyPrefix+id).Bytes()
	switch {
	case err == nil:
		var c cachedLocation
		if jerr := json.Unmarshal(raw, &c); jerr == nil {
			return &entity.Location{
				ID:        c.ID,
				Kind:      entity.LocationKind(c.Kind),
				Name:      c.Name,
				IsActive:  c.IsActive,
				CreatedAt: c.CreatedAt,
				UpdatedAt: c.UpdatedAt,
			}, nil
		}
	case !errors.Is(err, redis.Nil):
		r.log.Warn().Err(err).Str("location_id", id).Msg("caché de ubicaciones no disponible")
	}

	l, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	body, _ := json.Marshal(cachedLocation{
		ID:        l.ID,
		Kind:      string(l.Kind),
		Name:      l.Name,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	})
	if err := r.rdb.Set(ctx, keyPrefix+id, body, r.ttl).Err(); err != nil {
		r.log.Warn().Err(err).Str("location_id", id).Msg("no se pudo cachear la ubicación")
	}
	return l, nil
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
