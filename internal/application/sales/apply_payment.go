package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/optica-pos/internal/application/dto"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/billing"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

// ApplyPaymentUseCase aplica un pago a una factura y recalcula saldo y estado.
// El alta del pago y el recálculo ocurren como una sola unidad atómica por
// factura: la fila se bloquea (FOR UPDATE) para serializar pagos concurrentes
// sobre la misma factura.
type ApplyPaymentUseCase struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
}

// NewApplyPaymentUseCase construye el caso de uso.
func NewApplyPaymentUseCase(txRunner TxRunner, invoiceRepo repository.InvoiceRepository, paymentRepo repository.PaymentRepository) *ApplyPaymentUseCase {
	return &ApplyPaymentUseCase{txRunner: txRunner, invoiceRepo: invoiceRepo, paymentRepo: paymentRepo}
}

// ApplyPayment registra el pago. Precondiciones validadas con la fila
// bloqueada: estado pending/partial (si no, ErrInvoiceNotPayable), monto > 0,
// y sin sobrepago: amount_paid + amount > total se rechaza con
// ErrOverpaymentRejected en vez de recortar el monto.
func (uc *ApplyPaymentUseCase) ApplyPayment(ctx context.Context, userID, invoiceID string, in dto.ApplyPaymentRequest) (*dto.InvoiceResponse, error) {
	if invoiceID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var inv *entity.Invoice

	err := uc.txRunner.RunSale(ctx, func(
		_ repository.ProductRepository,
		_ repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		var err error
		inv, err = invoiceRepo.GetByIDForUpdate(invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if !inv.IsPayable() {
			return domain.ErrInvoiceNotPayable
		}
		newPaid := inv.AmountPaid.Add(in.Amount)
		if newPaid.GreaterThan(inv.Total) {
			return domain.ErrOverpaymentRejected
		}

		payment := &entity.Payment{
			ID:        uuid.New().String(),
			InvoiceID: invoiceID,
			Amount:    in.Amount,
			Method:    in.Method,
			Reference: in.Reference,
			Notes:     in.Notes,
			PaidAt:    now,
			CreatedBy: userID,
			CreatedAt: now,
		}
		if err := paymentRepo.Create(payment); err != nil {
			return err
		}

		inv.AmountPaid = newPaid
		inv.AmountDue = inv.Total.Sub(newPaid)
		inv.Status = billing.DeriveStatus(inv.Total, newPaid, false)
		inv.UpdatedAt = now
		if inv.Status == entity.InvoiceStatusPaid && inv.PaidAt == nil {
			paidAt := now
			inv.PaidAt = &paidAt
		}
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}

		inv.Items, err = invoiceRepo.GetItemsByInvoiceID(invoiceID)
		if err != nil {
			return err
		}
		inv.Payments, err = paymentRepo.ListByInvoice(invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}
