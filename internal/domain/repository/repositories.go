package repository

// Repositories agrupa los puertos atados a una misma unidad de trabajo.
type Repositories struct {
	Locations LocationRepository
	Products  ProductRepository
	Stock     StockRepository
	Holds     HoldRepository
	Movements StockMovementRepository
	Transfers TransferRepository
}
