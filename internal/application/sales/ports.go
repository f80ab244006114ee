package sales

import (
	"context"
	"time"

	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que abarca inventario
// y facturación: la validación de una venta toca una fila de factura y N filas
// de producto, y debe confirmar o revertir como una sola unidad.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
	) error) error
}

// StockEngine integra ventas con el motor de inventario usando los
// repositorios del caller (misma transacción). Si devuelve error
// (ej: ErrInsufficientStock) el caller hace rollback completo.
type StockEngine interface {
	DeductForSaleInTx(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		productID string,
		quantity int,
		reference, createdBy string,
		now time.Time,
	) (*entity.StockMovement, error)
	RestoreForCancelInTx(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		productID string,
		quantity int,
		reference, createdBy string,
		now time.Time,
	) (*entity.StockMovement, error)
	InvalidateCache(ctx context.Context, productIDs ...string)
}

// FulfillmentSaga arranca el flujo de lentes a medida una vez confirmada la
// validación de la factura. Idempotente por invoice ID. Un error aquí nunca
// revierte la venta: se devuelve como aviso de conciliación.
type FulfillmentSaga interface {
	OnInvoiceValidated(ctx context.Context, invoice *entity.Invoice, spec *entity.LensSpec) (*entity.PurchaseOrder, *entity.WorkshopOrder, error)
}
