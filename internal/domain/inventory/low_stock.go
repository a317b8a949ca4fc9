package inventory

// La sugerencia repone hasta 1.5 veces el umbral de alerta.
const (
	reorderNum = 3
	reorderDen = 2
)

// IsLowStock indica si la existencia disponible alcanzó el umbral de alerta.
// Un umbral en cero desactiva la alerta.
func IsLowStock(available, threshold int64) bool {
	return threshold > 0 && available <= threshold
}

// SuggestedReorder cantidad sugerida para volver a threshold*1.5, redondeada hacia arriba.
func SuggestedReorder(available, threshold int64) int64 {
	target := (threshold*reorderNum + reorderDen - 1) / reorderDen
	if available >= target {
		return 0
	}
	return target - available
}
