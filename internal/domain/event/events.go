package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Nombres de eventos emitidos por el libro de stock.
const (
	NameLowStockDetected   = "LOW_STOCK_DETECTED"
	NameOutOfStockDetected = "OUT_OF_STOCK_DETECTED"
)

// StockAlert evento de alerta de stock (bajo o agotado). Ambos comparten la misma carga:
// cuenta dueña, producto, bodega y partición de vencimiento afectados.
type StockAlert struct {
	EventID     string    `json:"event_id"`
	Name        string    `json:"name"`
	CompanyID   string    `json:"company_id"`
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	Expiration  string    `json:"expiration"` // fecha "2006-01-02" o "none"
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewLowStockDetected construye el evento de stock bajo.
func NewLowStockDetected(companyID string, rec entity.StockRecord, now time.Time) StockAlert {
	return newAlert(NameLowStockDetected, companyID, rec, now)
}

// NewOutOfStockDetected construye el evento de stock agotado.
func NewOutOfStockDetected(companyID string, rec entity.StockRecord, now time.Time) StockAlert {
	return newAlert(NameOutOfStockDetected, companyID, rec, now)
}

func newAlert(name, companyID string, rec entity.StockRecord, now time.Time) StockAlert {
	return StockAlert{
		EventID:     uuid.New().String(),
		Name:        name,
		CompanyID:   companyID,
		ProductID:   rec.ProductID,
		WarehouseID: rec.WarehouseID,
		Expiration:  rec.Expiration.String(),
		OccurredAt:  now,
	}
}
