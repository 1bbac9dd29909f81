package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de comandos y consultas del libro de stock.
type StockHandler struct {
	uc *inventory.CommandUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.CommandUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// AddStock registra una entrada de stock. Crea el registro si la clave no existe.
func (h *StockHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	exp, err := entity.ParseExpiration(in.ExpirationDate)
	if err != nil {
		return respondError(c, err)
	}
	rec, err := h.uc.AddStock(c.Context(), inventory.AddStockCommand{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    entity.Quantity(in.Quantity),
		Expiration:  exp,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockRecordResponse(rec))
}

// DecreaseStock registra una salida de stock.
func (h *StockHandler) DecreaseStock(c *fiber.Ctx) error {
	var in dto.DecreaseStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	exp, err := entity.ParseExpiration(in.ExpirationDate)
	if err != nil {
		return respondError(c, err)
	}
	rec, err := h.uc.DecreaseStock(c.Context(), inventory.DecreaseStockCommand{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    entity.Quantity(in.Quantity),
		Expiration:  exp,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStockRecordResponse(rec))
}

// Transfer traslada stock entre bodegas. Devuelve el registro de origen post-débito.
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	exp, err := entity.ParseExpiration(in.ExpirationDate)
	if err != nil {
		return respondError(c, err)
	}
	rec, err := h.uc.Transfer(c.Context(), inventory.TransferCommand{
		ProductID:              in.ProductID,
		OriginWarehouseID:      in.OriginWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Quantity:               entity.Quantity(in.Quantity),
		Expiration:             exp,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStockRecordResponse(rec))
}

// GetRecord consulta un registro por clave compuesta (query: product_id, warehouse_id, expiration_date).
func (h *StockHandler) GetRecord(c *fiber.Ctx) error {
	exp, err := entity.ParseExpiration(c.Query("expiration_date"))
	if err != nil {
		return respondError(c, err)
	}
	rec, err := h.uc.GetRecord(c.Context(), c.Query("product_id"), c.Query("warehouse_id"), exp)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStockRecordResponse(rec))
}

// DeleteRecord elimina un registro por clave compuesta (comando administrativo).
func (h *StockHandler) DeleteRecord(c *fiber.Ctx) error {
	exp, err := entity.ParseExpiration(c.Query("expiration_date"))
	if err != nil {
		return respondError(c, err)
	}
	err = h.uc.DeleteRecord(c.Context(), inventory.DeleteRecordCommand{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Expiration:  exp,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByWarehouse lista los registros de stock de una bodega.
func (h *StockHandler) ListByWarehouse(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	records, err := h.uc.ListByWarehouse(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.StockRecordResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, *toStockRecordResponse(rec))
	}
	return c.JSON(dto.StockListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

func toStockRecordResponse(rec *entity.StockRecord) *dto.StockRecordResponse {
	if rec == nil {
		return nil
	}
	expDate := ""
	if rec.Expiration.HasDate() {
		expDate = rec.Expiration.String()
	}
	return &dto.StockRecordResponse{
		ID:             rec.ID,
		ProductID:      rec.ProductID,
		WarehouseID:    rec.WarehouseID,
		ExpirationDate: expDate,
		Quantity:       int64(rec.Quantity),
		State:          string(rec.State),
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}
