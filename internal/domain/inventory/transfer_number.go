package inventory

import "fmt"

// TransferNumber formatea el consecutivo anual de traslados: TR-2024-001.
func TransferNumber(year int, seq int64) string {
	return fmt.Sprintf("TR-%d-%03d", year, seq)
}
