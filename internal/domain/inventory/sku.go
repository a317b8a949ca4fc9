package inventory

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// GenericBrandCode se usa cuando el producto no tiene marca.
const GenericBrandCode = "GN"

// GenerateSKU arma un SKU determinista a partir de categoría, marca e instante:
// TN-{CAT}-{MARCA}-{timestamp base36}. attempt > 0 agrega un sufijo para resolver colisiones.
func GenerateSKU(category, brand string, at time.Time, attempt int) string {
	cat := codeOf(category, 3)
	if cat == "" {
		cat = "GEN"
	}
	br := codeOf(brand, 2)
	if br == "" {
		br = GenericBrandCode
	}
	sku := "TN-" + cat + "-" + br + "-" + strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
	if attempt > 0 {
		sku += "-" + strings.ToUpper(strconv.FormatInt(int64(attempt), 36))
	}
	return sku
}

// codeOf toma las primeras n letras o dígitos en mayúscula.
func codeOf(s string, n int) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if b.Len() >= n {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
