// seed_locations genera un script SQL para registrar bodegas y puntos de venta
// a partir del CSV exportado por el ERP (columnas: id;tipo;nombre;activo).
//
// Uso: go run ./cmd/seed_locations [ruta/ubicaciones.csv] [salida.sql]
// Por defecto lee ubicaciones.csv del directorio actual y escribe
// internal/infrastructure/postgres/seeds/locations.sql.
// Los exportes del ERP vienen en ISO-8859-1; se convierten a UTF-8 al leer.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type locationRow struct {
	id     string
	kind   string
	name   string
	active bool
}

var kindAliases = map[string]string{
	"warehouse": "warehouse",
	"bodega":    "warehouse",
	"outlet":    "outlet",
	"tienda":    "outlet",
	"pdv":       "outlet",
}

func main() {
	csvPath := "ubicaciones.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseLocations(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "seeds", "locations.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d ubicaciones\n", outPath, len(rows))
}

// parseLocations lee el CSV separado por ';' con encabezado. Filas repetidas por id
// conservan la última aparición.
func parseLocations(r io.Reader) ([]locationRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("encabezado: %w", err)
	}

	byID := make(map[string]locationRow)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 3 columnas", line)
		}
		id := strings.TrimSpace(rec[0])
		name := strings.TrimSpace(rec[2])
		if id == "" || name == "" {
			continue
		}
		kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(rec[1]))]
		if !ok {
			return nil, fmt.Errorf("línea %d: tipo %q no soportado", line, rec[1])
		}
		active := true
		if len(rec) > 3 {
			switch strings.ToLower(strings.TrimSpace(rec[3])) {
			case "n", "no", "0", "false", "inactivo":
				active = false
			}
		}
		byID[id] = locationRow{id: id, kind: kind, name: name, active: active}
	}

	rows := make([]locationRow, 0, len(byID))
	for _, row := range byID {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })
	return rows, nil
}

func writeSQL(w io.Writer, rows []locationRow) error {
	var b strings.Builder
	b.WriteString("-- Bodegas y puntos de venta\n")
	b.WriteString("-- Generado por cmd/seed_locations\n\n")
	if len(rows) == 0 {
		b.WriteString("-- sin ubicaciones\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("INSERT INTO locations (id, kind, name, is_active) VALUES\n")
	for i, row := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', %t)%s\n", escapeSQL(row.id), row.kind, escapeSQL(row.name), row.active, sep)
	}
	b.WriteString("ON CONFLICT (id) DO UPDATE SET kind = EXCLUDED.kind, name = EXCLUDED.name,\n")
	b.WriteString("  is_active = EXCLUDED.is_active, updated_at = now();\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
