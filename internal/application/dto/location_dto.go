package dto

import "time"

// RegisterLocationRequest entrada para registrar la identidad de una bodega o punto de venta.
// ID es opcional: si se omite se genera uno.
type RegisterLocationRequest struct {
	ID       string `json:"id"`
	Kind     string `json:"kind" validate:"required,oneof=warehouse outlet"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	IsActive *bool  `json:"is_active"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
