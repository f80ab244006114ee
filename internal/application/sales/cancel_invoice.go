package sales

import (
	"context"
	"time"

	"github.com/tu-usuario/optica-pos/internal/application/dto"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

// CancelInvoiceUseCase anula una factura pending/partial: registra un
// movimiento inbound compensatorio por cada línea deducida en la validación
// (exactamente las mismas cantidades) y marca la factura como cancelled.
// Los pagos recibidos no se reembolsan aquí; el reembolso contable es un
// proceso externo.
type CancelInvoiceUseCase struct {
	txRunner    TxRunner
	stockEngine StockEngine
	invoiceRepo repository.InvoiceRepository
}

// NewCancelInvoiceUseCase construye el caso de uso.
func NewCancelInvoiceUseCase(txRunner TxRunner, stockEngine StockEngine, invoiceRepo repository.InvoiceRepository) *CancelInvoiceUseCase {
	return &CancelInvoiceUseCase{txRunner: txRunner, stockEngine: stockEngine, invoiceRepo: invoiceRepo}
}

// CancelInvoice ejecuta la anulación en una sola transacción. draft, paid o
// cancelled devuelven ErrInvoiceNotCancellable.
func (uc *CancelInvoiceUseCase) CancelInvoice(ctx context.Context, userID, invoiceID string) (*dto.InvoiceResponse, error) {
	if invoiceID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var inv *entity.Invoice
	var restoredIDs []string

	err := uc.txRunner.RunSale(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		restoredIDs = restoredIDs[:0]

		var err error
		inv, err = invoiceRepo.GetByIDForUpdate(invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if !inv.IsCancellable() {
			return domain.ErrInvoiceNotCancellable
		}

		inv.Items, err = invoiceRepo.GetItemsByInvoiceID(invoiceID)
		if err != nil {
			return err
		}

		// Reversa: entrada compensatoria por cada línea que descontó stock.
		reference := "cancel:" + invoiceID
		for _, item := range inv.Items {
			if item.ProductID == "" {
				continue
			}
			if _, err := uc.stockEngine.RestoreForCancelInTx(
				productRepo, movementRepo,
				item.ProductID, item.Quantity,
				reference, userID, now,
			); err != nil {
				return err
			}
			restoredIDs = append(restoredIDs, item.ProductID)
		}

		cancelledAt := now
		inv.Status = entity.InvoiceStatusCancelled
		inv.CancelledAt = &cancelledAt
		inv.UpdatedAt = now
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}

		inv.Payments, err = paymentRepo.ListByInvoice(invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.stockEngine.InvalidateCache(ctx, restoredIDs...)
	return toInvoiceResponse(inv), nil
}
