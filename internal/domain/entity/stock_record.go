package entity

import "time"

// StockState estado de salud de un registro de stock, derivado siempre de la cantidad
// frente al stock mínimo del producto. Nunca lo fija el caller directamente.
type StockState string

const (
	StateWithStock  StockState = "WITH_STOCK"
	StateLowStock   StockState = "LOW_STOCK"
	StateOutOfStock StockState = "OUT_OF_STOCK"
)

// Quantity cantidad de stock; nunca negativa.
type Quantity int64

// Add suma una cantidad.
func (q Quantity) Add(n Quantity) Quantity { return q + n }

// Sub resta una cantidad; ok=false si el resultado sería negativo (la cantidad no cambia).
func (q Quantity) Sub(n Quantity) (Quantity, bool) {
	if n > q {
		return q, false
	}
	return q - n, true
}

// StockRecord registro del libro de stock: existencia de un producto en una bodega
// para una partición de vencimiento. A lo sumo un registro por clave compuesta
// (producto, bodega, vencimiento-o-ninguno).
type StockRecord struct {
	ID          string
	ProductID   string
	WarehouseID string
	Expiration  ExpirationKey
	Quantity    Quantity
	State       StockState
	Version     int64 // token de concurrencia optimista; lo incrementa el store en cada update
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key devuelve la clave compuesta del registro, útil para logs.
func (r StockRecord) Key() string {
	return r.ProductID + "/" + r.WarehouseID + "/" + r.Expiration.String()
}
