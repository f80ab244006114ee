package repository

import "github.com/tu-usuario/optica-pos/internal/domain/entity"

// PurchaseOrderRepository puerto de persistencia para órdenes de compra de lentes.
// GetByInvoiceID soporta la idempotencia del saga (una orden por factura).
type PurchaseOrderRepository interface {
	Create(order *entity.PurchaseOrder) error
	GetByID(id string) (*entity.PurchaseOrder, error)
	GetByInvoiceID(invoiceID string) (*entity.PurchaseOrder, error)
	Update(order *entity.PurchaseOrder) error
}
