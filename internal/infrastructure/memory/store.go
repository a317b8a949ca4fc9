// Package memory implementa los puertos de persistencia en memoria del proceso.
//
// Sirve para desarrollo, demos y tests. Las transacciones son serializables: TxRunner toma
// el candado de escritura durante toda la función, trabaja sobre una copia del estado y
// solo la publica si la función termina sin error.
package memory

import (
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/tradenest-api/internal/domain/entity"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
)

type balanceKey struct {
	productID  string
	locationID string
}

type state struct {
	locations map[string]entity.Location
	products  map[string]entity.Product
	balances  map[balanceKey]entity.StockBalance
	holds     map[string]entity.StockHold
	transfers map[string]entity.StockTransfer
	movements []entity.StockMovement
	events    []entity.TransferEvent
	counters  map[int]int64
}

func newState() *state {
	return &state{
		locations: map[string]entity.Location{},
		products:  map[string]entity.Product{},
		balances:  map[balanceKey]entity.StockBalance{},
		holds:     map[string]entity.StockHold{},
		transfers: map[string]entity.StockTransfer{},
		counters:  map[int]int64{},
	}
}

// clone copia los mapas; los diarios se recortan para que un append sobre la copia
// nunca escriba en el arreglo compartido con el estado publicado.
func (s *state) clone() *state {
	return &state{
		locations: maps.Clone(s.locations),
		products:  maps.Clone(s.products),
		balances:  maps.Clone(s.balances),
		holds:     maps.Clone(s.holds),
		transfers: maps.Clone(s.transfers),
		movements: slices.Clip(s.movements),
		events:    slices.Clip(s.events),
		counters:  maps.Clone(s.counters),
	}
}

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu   sync.RWMutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Repositories devuelve repositorios sobre el estado publicado; cada llamada toma su propio candado.
func (s *Store) Repositories() repository.Repositories {
	return s.bind(nil)
}

func (s *Store) bind(tx *state) repository.Repositories {
	b := binding{store: s, tx: tx}
	return repository.Repositories{
		Locations: &LocationRepo{b},
		Products:  &ProductRepo{b},
		Stock:     &StockRepo{b},
		Holds:     &HoldRepo{b},
		Movements: &MovementRepo{b},
		Transfers: &TransferRepo{b},
	}
}

// binding resuelve sobre qué estado opera un repositorio: la copia de una transacción
// en curso (ya protegida por el candado de TxRunner) o el estado publicado.
type binding struct {
	store *Store
	tx    *state
}

func (b binding) read(fn func(s *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	return fn(b.store.data)
}

func (b binding) write(fn func(s *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	next := b.store.data.clone()
	if err := fn(next); err != nil {
		return err
	}
	b.store.data = next
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
