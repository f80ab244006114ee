package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeInbound    = "inbound"    // entrada
	MovementTypeOutbound   = "outbound"   // salida
	MovementTypeTransfer   = "transfer"   // traslado entre tiendas (dos filas atómicas)
	MovementTypeAdjustment = "adjustment" // ajuste por conteo físico
)

// StockMovement representa un movimiento inmutable de inventario sobre la fila
// de un producto en una tienda. PreviousStock y NewStock dejan el delta auditable:
// NewStock = PreviousStock ± Quantity según el tipo y, en traslados, según si la
// fila es la de origen o la de destino.
type StockMovement struct {
	ID            string
	ProductID     string
	StoreID       string // tienda de la fila afectada
	Type          string
	Quantity      int // siempre positivo; el signo lo da el tipo
	PreviousStock int
	NewStock      int
	FromStoreID   string // solo transfer
	ToStoreID     string // solo transfer
	Reference     string // ej: sale:<invoiceID>, cancel:<invoiceID>
	Reason        string
	CreatedBy     string // UserID
	CreatedAt     time.Time
}

// Delta devuelve el cambio con signo aplicado a la fila (NewStock - PreviousStock).
func (m *StockMovement) Delta() int {
	return m.NewStock - m.PreviousStock
}
