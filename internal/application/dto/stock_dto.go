package dto

import "time"

// AddStockRequest body para POST /api/stock/add.
// ExpirationDate "2006-01-02"; vacío = partición sin vencimiento.
type AddStockRequest struct {
	ProductID      string `json:"product_id" validate:"required"`
	WarehouseID    string `json:"warehouse_id" validate:"required"`
	Quantity       int64  `json:"quantity" validate:"required,gt=0"`
	ExpirationDate string `json:"expiration_date,omitempty"`
}

// DecreaseStockRequest body para POST /api/stock/decrease.
type DecreaseStockRequest struct {
	ProductID      string `json:"product_id" validate:"required"`
	WarehouseID    string `json:"warehouse_id" validate:"required"`
	Quantity       int64  `json:"quantity" validate:"required,gt=0"`
	ExpirationDate string `json:"expiration_date,omitempty"`
}

// TransferStockRequest body para POST /api/stock/transfer.
type TransferStockRequest struct {
	ProductID              string `json:"product_id" validate:"required"`
	OriginWarehouseID      string `json:"origin_warehouse_id" validate:"required"`
	DestinationWarehouseID string `json:"destination_warehouse_id" validate:"required"`
	Quantity               int64  `json:"quantity" validate:"required,gt=0"`
	ExpirationDate         string `json:"expiration_date,omitempty"`
}

// StockRecordResponse salida de un registro del libro de stock.
type StockRecordResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	WarehouseID    string    `json:"warehouse_id"`
	ExpirationDate string    `json:"expiration_date,omitempty"` // vacío = sin vencimiento
	Quantity       int64     `json:"quantity"`
	State          string    `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StockListResponse lista paginada de registros de stock de una bodega.
type StockListResponse struct {
	Items []StockRecordResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
