package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isRetryable indica fallos de serialización (40001) o deadlock (40P01): la transacción
// completa puede repetirse con lecturas frescas.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// isUUID indica si id puede compararse contra una columna UUID. Postgres rechaza cualquier
// otro texto con 22P02 antes de buscar la fila, así que un id mal formado equivale a "no existe".
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// nullIfEmpty mapea "" a NULL para columnas UUID opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil // LIMIT NULL = sin límite
	}
	return limit
}
