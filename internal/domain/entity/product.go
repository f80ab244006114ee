package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo en una óptica (fila por tienda).
// CurrentStock lo muta únicamente el motor de inventario; su valor siempre
// equivale a la suma neta de los movimientos registrados desde la creación.
type Product struct {
	ID            string
	StoreID       string
	SKU           string // referencia única por tienda; identifica el "mismo" producto entre tiendas
	Name          string
	Description   string
	CurrentStock  int
	MinStock      int             // umbral de alerta de reposición
	PurchasePrice decimal.Decimal // costo de compra
	SellingPrice  decimal.Decimal // precio de venta
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
