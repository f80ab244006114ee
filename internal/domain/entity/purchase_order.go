package entity

import "time"

// Estados de una orden de compra de lentes.
const (
	PurchaseOrderStatusSent      = "sent"
	PurchaseOrderStatusReceived  = "received"
	PurchaseOrderStatusCancelled = "cancelled"
)

// Tipos de orden de compra.
const (
	PurchaseOrderTypeLens = "lens"
)

// PurchaseOrder representa el pedido al proveedor generado por el saga de
// lentes a medida. InvoiceID es la clave de idempotencia del saga: nunca se
// crea más de una orden de compra para la misma factura.
type PurchaseOrder struct {
	ID           string
	InvoiceID    string
	Reference    string // consecutivo legible, ej: OC-20260830-ab12
	Type         string
	Status       string
	SupplierID   string
	SupplierName string
	LensSpec     *LensSpec
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
