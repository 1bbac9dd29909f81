package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockRecordRepository define el puerto de persistencia del libro de stock,
// con clave compuesta (producto, bodega, vencimiento-o-ninguno).
// Update exige la versión esperada (concurrencia optimista): si otro comando
// escribió primero devuelve domain.ErrConflict y el caller relee y reintenta.
type StockRecordRepository interface {
	// FindByKey devuelve (nil, nil) cuando no existe registro para la clave.
	FindByKey(ctx context.Context, productID, warehouseID string, exp entity.ExpirationKey) (*entity.StockRecord, error)
	// Insert falla con domain.ErrDuplicate si la clave compuesta ya existe.
	Insert(ctx context.Context, rec *entity.StockRecord) error
	// Update escribe cantidad y estado si la versión coincide; incrementa Version en rec.
	// domain.ErrConflict en desajuste de versión, domain.ErrNotFound si el registro desapareció.
	Update(ctx context.Context, rec *entity.StockRecord, expectedVersion int64) error
	// Delete elimina por ID (comando administrativo).
	Delete(ctx context.Context, id string) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockRecord, error)
}
