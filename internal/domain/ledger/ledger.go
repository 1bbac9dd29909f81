// Package ledger contiene las mutaciones puras del libro de stock. Cada operación
// recibe el registro actual y devuelve el registro nuevo más los eventos generados,
// en orden; no toca persistencia ni publica nada.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/event"
)

// NewRecord crea el registro la primera vez que entra stock para una clave compuesta.
// Cantidad inicial = lo agregado, estado WITH_STOCK.
func NewRecord(productID, warehouseID string, exp entity.ExpirationKey, qty entity.Quantity, now time.Time) (entity.StockRecord, error) {
	if qty <= 0 {
		return entity.StockRecord{}, domain.ErrInvalidInput
	}
	return entity.StockRecord{
		ID:          uuid.New().String(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Expiration:  exp,
		Quantity:    qty,
		State:       entity.StateWithStock,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AddStock aplica una entrada de stock sobre un registro existente.
// Si la cantidad actual es 0 el estado pasa a WITH_STOCK. Además, si el stock mínimo
// supera la cantidad resultante también fuerza WITH_STOCK; la regla se conserva tal
// cual del comportamiento histórico aunque parezca invertida (ver DESIGN.md).
// Una entrada nunca genera eventos.
func AddStock(rec entity.StockRecord, qty, minimumStock entity.Quantity, now time.Time) (entity.StockRecord, error) {
	if qty <= 0 {
		return rec, domain.ErrInvalidInput
	}
	if rec.Quantity == 0 {
		rec.State = entity.StateWithStock
	}
	if minimumStock > rec.Quantity.Add(qty) {
		rec.State = entity.StateWithStock
	}
	rec.Quantity = rec.Quantity.Add(qty)
	rec.UpdatedAt = now
	return rec, nil
}

// DecreaseStock aplica una salida de stock. Evalúa contra la cantidad resultante:
// si queda ≤ stock mínimo el estado pasa a LOW_STOCK y se genera LowStockDetected;
// si queda exactamente 0 el estado pasa a OUT_OF_STOCK y se genera OutOfStockDetected.
// Ambas condiciones pueden dispararse en la misma llamada; el orden de generación
// (LowStock primero) se preserva. La operación no es idempotente: una segunda llamada
// igual opera sobre la cantidad ya reducida.
func DecreaseStock(rec entity.StockRecord, qty, minimumStock entity.Quantity, companyID string, now time.Time) (entity.StockRecord, []event.StockAlert, error) {
	if qty <= 0 {
		return rec, nil, domain.ErrInvalidInput
	}
	remaining, ok := rec.Quantity.Sub(qty)
	if !ok {
		return rec, nil, domain.ErrInsufficientStock
	}

	var events []event.StockAlert
	if remaining <= minimumStock {
		rec.State = entity.StateLowStock
		events = append(events, event.NewLowStockDetected(companyID, rec, now))
	}
	if remaining == 0 {
		rec.State = entity.StateOutOfStock
		events = append(events, event.NewOutOfStockDetected(companyID, rec, now))
	}
	rec.Quantity = remaining
	rec.UpdatedAt = now
	return rec, events, nil
}
