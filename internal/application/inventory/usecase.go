package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/event"
	"github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// maxConflictRetries reintentos del ciclo leer-mutar-persistir ante ErrConflict
// (otro comando escribió la misma clave entre nuestra lectura y nuestro update).
const maxConflictRetries = 3

// AddStockCommand entrada de stock para una clave compuesta.
type AddStockCommand struct {
	ProductID   string
	WarehouseID string
	Quantity    entity.Quantity
	Expiration  entity.ExpirationKey
}

// DecreaseStockCommand salida de stock para una clave compuesta.
type DecreaseStockCommand struct {
	ProductID   string
	WarehouseID string
	Quantity    entity.Quantity
	Expiration  entity.ExpirationKey
}

// TransferCommand traslado entre bodegas para el mismo producto y partición de vencimiento.
type TransferCommand struct {
	ProductID              string
	OriginWarehouseID      string
	DestinationWarehouseID string
	Quantity               entity.Quantity
	Expiration             entity.ExpirationKey
}

// DeleteRecordCommand eliminación administrativa de un registro de stock.
type DeleteRecordCommand struct {
	ProductID   string
	WarehouseID string
	Expiration  entity.ExpirationKey
}

// CommandUseCase orquesta los comandos del libro de stock: resuelve colaboradores,
// aplica las mutaciones puras del paquete ledger, persiste y publica eventos
// (siempre persistir-luego-publicar).
type CommandUseCase struct {
	stockRepo     repository.StockRecordRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	publisher     EventPublisher
	log           *logger.Logger
}

// NewCommandUseCase construye el caso de uso.
func NewCommandUseCase(
	stockRepo repository.StockRecordRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *CommandUseCase {
	return &CommandUseCase{
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		publisher:     publisher,
		log:           log,
	}
}

// AddStock registra una entrada. Si no existe registro para la clave lo crea con la
// cantidad agregada; si existe, aplica la entrada sobre el registro actual.
func (uc *CommandUseCase) AddStock(ctx context.Context, cmd AddStockCommand) (*entity.StockRecord, error) {
	if cmd.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.resolveProduct(cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.resolveWarehouse(cmd.WarehouseID); err != nil {
		return nil, err
	}
	return uc.credit(ctx, product, cmd.WarehouseID, cmd.Expiration, cmd.Quantity)
}

// DecreaseStock registra una salida. El registro debe existir; tras persistir publica
// las alertas generadas (LowStock y/o OutOfStock) en orden de generación.
func (uc *CommandUseCase) DecreaseStock(ctx context.Context, cmd DecreaseStockCommand) (*entity.StockRecord, error) {
	if cmd.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.resolveProduct(cmd.ProductID)
	if err != nil {
		return nil, err
	}
	warehouse, err := uc.resolveWarehouse(cmd.WarehouseID)
	if err != nil {
		return nil, err
	}
	rec, events, err := uc.debit(ctx, product, warehouse, cmd.Expiration, cmd.Quantity)
	if err != nil {
		return nil, err
	}
	uc.publishAll(ctx, events)
	return rec, nil
}

// Transfer traslada stock entre dos bodegas para el mismo producto y partición.
// Débito en origen y crédito en destino son dos escrituras independientes, no una
// transacción: si el crédito falla después de confirmar el débito se ejecuta una
// compensación que reintegra el stock en origen. Si la compensación también falla
// se devuelve ErrPartialTransfer con ambas causas para reconciliación manual.
// Devuelve el registro de origen posterior al débito.
func (uc *CommandUseCase) Transfer(ctx context.Context, cmd TransferCommand) (*entity.StockRecord, error) {
	if cmd.Quantity <= 0 || cmd.OriginWarehouseID == cmd.DestinationWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.resolveProduct(cmd.ProductID)
	if err != nil {
		return nil, err
	}
	origin, err := uc.resolveWarehouse(cmd.OriginWarehouseID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.resolveWarehouse(cmd.DestinationWarehouseID); err != nil {
		return nil, err
	}

	originRec, events, err := uc.debit(ctx, product, origin, cmd.Expiration, cmd.Quantity)
	if err != nil {
		return nil, err
	}
	uc.publishAll(ctx, events)

	if _, creditErr := uc.credit(ctx, product, cmd.DestinationWarehouseID, cmd.Expiration, cmd.Quantity); creditErr != nil {
		// Compensación: reintegra el débito confirmado en origen.
		if _, compErr := uc.credit(ctx, product, cmd.OriginWarehouseID, cmd.Expiration, cmd.Quantity); compErr != nil {
			uc.log.Error().
				Str("product_id", cmd.ProductID).
				Str("origin_warehouse_id", cmd.OriginWarehouseID).
				Str("destination_warehouse_id", cmd.DestinationWarehouseID).
				Str("expiration", cmd.Expiration.String()).
				Int64("quantity", int64(cmd.Quantity)).
				AnErr("credit_error", creditErr).
				AnErr("compensation_error", compErr).
				Msg("transferencia parcial: débito confirmado sin crédito ni compensación")
			return nil, fmt.Errorf("%w (crédito: %v; compensación: %v)", domain.ErrPartialTransfer, creditErr, compErr)
		}
		uc.log.Warn().
			Str("product_id", cmd.ProductID).
			Str("origin_warehouse_id", cmd.OriginWarehouseID).
			Str("destination_warehouse_id", cmd.DestinationWarehouseID).
			Err(creditErr).
			Msg("crédito en destino falló; débito compensado en origen")
		return nil, creditErr
	}
	return originRec, nil
}

// DeleteRecord elimina un registro de stock por clave compuesta (comando administrativo).
// Se permite eliminar con existencias; queda un warning con la cantidad restante.
func (uc *CommandUseCase) DeleteRecord(ctx context.Context, cmd DeleteRecordCommand) error {
	rec, err := uc.stockRepo.FindByKey(ctx, cmd.ProductID, cmd.WarehouseID, cmd.Expiration)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	if rec.Quantity > 0 {
		uc.log.Warn().
			Str("record_id", rec.ID).
			Str("key", rec.Key()).
			Int64("quantity", int64(rec.Quantity)).
			Msg("eliminando registro de stock con existencias")
	}
	return uc.stockRepo.Delete(ctx, rec.ID)
}

// GetRecord obtiene un registro por clave compuesta.
func (uc *CommandUseCase) GetRecord(ctx context.Context, productID, warehouseID string, exp entity.ExpirationKey) (*entity.StockRecord, error) {
	rec, err := uc.stockRepo.FindByKey(ctx, productID, warehouseID, exp)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// ListByWarehouse lista los registros de stock de una bodega.
func (uc *CommandUseCase) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockRecord, error) {
	if _, err := uc.resolveWarehouse(warehouseID); err != nil {
		return nil, err
	}
	return uc.stockRepo.ListByWarehouse(ctx, warehouseID, limit, offset)
}

// credit aplica una entrada sobre la clave, creando el registro si no existe.
// Reintenta ante ErrConflict/ErrDuplicate con una lectura fresca.
func (uc *CommandUseCase) credit(ctx context.Context, product *entity.Product, warehouseID string, exp entity.ExpirationKey, qty entity.Quantity) (*entity.StockRecord, error) {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		rec, err := uc.stockRepo.FindByKey(ctx, product.ID, warehouseID, exp)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		if rec == nil {
			created, err := ledger.NewRecord(product.ID, warehouseID, exp, qty, now)
			if err != nil {
				return nil, err
			}
			if err := uc.stockRepo.Insert(ctx, &created); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					continue // otro comando creó la clave; releer y aplicar como update
				}
				return nil, err
			}
			return &created, nil
		}
		updated, err := ledger.AddStock(*rec, qty, product.MinimumStock, now)
		if err != nil {
			return nil, err
		}
		if err := uc.stockRepo.Update(ctx, &updated, rec.Version); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return nil, err
		}
		return &updated, nil
	}
	return nil, domain.ErrConflict
}

// debit aplica una salida sobre la clave. El registro debe existir. Devuelve el
// registro persistido y los eventos generados, aún sin publicar.
func (uc *CommandUseCase) debit(ctx context.Context, product *entity.Product, warehouse *entity.Warehouse, exp entity.ExpirationKey, qty entity.Quantity) (*entity.StockRecord, []event.StockAlert, error) {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		rec, err := uc.stockRepo.FindByKey(ctx, product.ID, warehouse.ID, exp)
		if err != nil {
			return nil, nil, err
		}
		if rec == nil {
			return nil, nil, domain.ErrNotFound
		}
		now := time.Now().UTC()
		updated, events, err := ledger.DecreaseStock(*rec, qty, product.MinimumStock, warehouse.CompanyID, now)
		if err != nil {
			return nil, nil, err
		}
		if err := uc.stockRepo.Update(ctx, &updated, rec.Version); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return nil, nil, err
		}
		return &updated, events, nil
	}
	return nil, nil, domain.ErrConflict
}

// publishAll publica las alertas en orden de generación. Un fallo de publicación no
// revierte el comando (la mutación ya está persistida); se deja constancia en el log.
func (uc *CommandUseCase) publishAll(ctx context.Context, events []event.StockAlert) {
	for _, e := range events {
		if err := uc.publisher.Publish(ctx, e); err != nil {
			uc.log.Warn().
				Str("event", e.Name).
				Str("product_id", e.ProductID).
				Str("warehouse_id", e.WarehouseID).
				Err(err).
				Msg("no se pudo publicar alerta de stock")
		}
	}
}

func (uc *CommandUseCase) resolveProduct(id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (uc *CommandUseCase) resolveWarehouse(id string) (*entity.Warehouse, error) {
	warehouse, err := uc.warehouseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	return warehouse, nil
}
