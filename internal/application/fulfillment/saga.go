package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
	"github.com/tu-usuario/optica-pos/pkg/logger"
)

// Intentos del paso de orden de taller antes de rendirse y dejar la orden de
// compra para conciliación manual.
const defaultWorkshopAttempts = 3

// LensFulfillmentSaga coordina el flujo de lentes a medida tras validar una
// factura: 1) orden de compra al proveedor, 2) orden de taller enlazada a la
// factura y a la orden de compra. Es un coordinador de vida corta sin estado
// propio: su clave de idempotencia es el invoice ID, así que reejecutarlo para
// una factura con orden de compra ya creada la reutiliza en vez de duplicarla.
type LensFulfillmentSaga struct {
	poRepo   repository.PurchaseOrderRepository
	woRepo   repository.WorkshopOrderRepository
	log      *logger.Logger
	attempts int
}

// NewLensFulfillmentSaga construye el saga.
func NewLensFulfillmentSaga(
	poRepo repository.PurchaseOrderRepository,
	woRepo repository.WorkshopOrderRepository,
	log *logger.Logger,
) *LensFulfillmentSaga {
	return &LensFulfillmentSaga{poRepo: poRepo, woRepo: woRepo, log: log, attempts: defaultWorkshopAttempts}
}

// OnInvoiceValidated ejecuta ambos pasos. Si el paso 2 falla tras agotar los
// reintentos, la orden de compra queda en pie y se devuelve
// ErrSagaReconciliation: la venta nunca se revierte porque el pago ya fue
// tomado; la inconsistencia se resuelve a mano.
func (s *LensFulfillmentSaga) OnInvoiceValidated(ctx context.Context, invoice *entity.Invoice, spec *entity.LensSpec) (*entity.PurchaseOrder, *entity.WorkshopOrder, error) {
	if invoice == nil || spec == nil {
		return nil, nil, domain.ErrInvalidInput
	}
	now := time.Now()

	// Paso 1: orden de compra, idempotente por factura.
	po, err := s.poRepo.GetByInvoiceID(invoice.ID)
	if err != nil {
		return nil, nil, err
	}
	if po == nil {
		po = &entity.PurchaseOrder{
			ID:           uuid.New().String(),
			InvoiceID:    invoice.ID,
			Reference:    purchaseOrderReference(invoice.ID, now),
			Type:         entity.PurchaseOrderTypeLens,
			Status:       entity.PurchaseOrderStatusSent,
			SupplierID:   spec.SupplierID,
			SupplierName: spec.SupplierName,
			LensSpec:     spec,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.poRepo.Create(po); err != nil {
			return nil, nil, fmt.Errorf("crear orden de compra: %w", err)
		}
	}

	// Paso 2: orden de taller, también idempotente.
	wo, err := s.woRepo.GetByInvoiceID(invoice.ID)
	if err != nil {
		return po, nil, err
	}
	if wo != nil {
		return po, wo, nil
	}

	wo = &entity.WorkshopOrder{
		ID:               uuid.New().String(),
		InvoiceID:        invoice.ID,
		PurchaseOrderID:  po.ID,
		PurchaseOrderRef: po.Reference,
		ClientID:         invoice.ClientID,
		Status:           entity.WorkshopStatusAwaitingLenses,
		Urgent:           false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if lastErr = s.woRepo.Create(wo); lastErr == nil {
			return po, wo, nil
		}
		s.log.Warn().Err(lastErr).
			Str("invoice_id", invoice.ID).
			Str("purchase_order_id", po.ID).
			Int("attempt", attempt).
			Msg("crear orden de taller")
	}

	// Reintentos agotados: la orden de compra queda en pie, la inconsistencia
	// se reporta para conciliación manual.
	return po, nil, fmt.Errorf("%w: purchase_order=%s invoice=%s (%v)",
		domain.ErrSagaReconciliation, po.ID, invoice.ID, lastErr)
}

// purchaseOrderReference genera un consecutivo legible: OC-<fecha>-<sufijo>.
func purchaseOrderReference(invoiceID string, now time.Time) string {
	suffix := strings.ReplaceAll(invoiceID, "-", "")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("OC-%s-%s", now.Format("20060102"), suffix)
}
