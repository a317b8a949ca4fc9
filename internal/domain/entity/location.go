package entity

import "time"

// LocationKind distingue bodegas de puntos de venta.
type LocationKind string

const (
	LocationKindWarehouse LocationKind = "warehouse"
	LocationKindOutlet    LocationKind = "outlet"
)

// Valid indica si el tipo de ubicación es conocido.
func (k LocationKind) Valid() bool {
	return k == LocationKindWarehouse || k == LocationKindOutlet
}

// Location es la identidad de una bodega o punto de venta donde se guarda stock.
// Los metadatos (dirección, horario, responsable) viven fuera de este servicio.
type Location struct {
	ID        string
	Kind      LocationKind
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
