package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest registra un movimiento de inventario.
// Para adjustment la cantidad admite signo; para transfer se indica la tienda
// destino (la fila origen es la del producto).
type RecordMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"` // inbound, outbound, adjustment, transfer
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
	ToStoreID string `json:"to_store_id,omitempty"`
}

// MovementResponse fila del libro de movimientos.
type MovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	StoreID       string    `json:"store_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	FromStoreID   string    `json:"from_store_id,omitempty"`
	ToStoreID     string    `json:"to_store_id,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProductStockResponse stock actual de un producto en su tienda.
type ProductStockResponse struct {
	ProductID    string `json:"product_id"`
	StoreID      string `json:"store_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
	BelowMin     bool   `json:"below_min"`
}

// CreateProductRequest alta de producto en una tienda.
type CreateProductRequest struct {
	StoreID       string          `json:"store_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	MinStock      int             `json:"min_stock"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

// CreateStoreRequest alta de tienda.
type CreateStoreRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}
