package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// MinimumStock es el umbral de stock mínimo que el libro usa para derivar
// el estado de salud; se configura por producto, nunca se guarda en el registro de stock.
type Product struct {
	ID           string
	CompanyID    string
	SKU          string // código único por empresa
	Name         string
	Description  string
	Price        decimal.Decimal // precio de venta
	Cost         decimal.Decimal // costo de compra
	MinimumStock Quantity
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
