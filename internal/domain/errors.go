package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrConcurrencyConflict    = errors.New("conflicto de concurrencia")
)

// ErrStaleVersion indica que la fila de stock cambió de versión entre la lectura y la escritura.
// Es el único conflicto que se reintenta automáticamente.
var ErrStaleVersion = fmt.Errorf("%w: versión de stock desactualizada", ErrConcurrencyConflict)

// Invalid agrega detalle a ErrInvalidInput.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound agrega detalle a ErrNotFound.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
