package sales

import (
	"context"

	"github.com/tu-usuario/optica-pos/internal/application/dto"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

// InvoiceQueryUseCase proyecciones de lectura de facturación: detalle completo
// de una factura e historial por cliente o tienda.
type InvoiceQueryUseCase struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
}

// NewInvoiceQueryUseCase construye el caso de uso.
func NewInvoiceQueryUseCase(invoiceRepo repository.InvoiceRepository, paymentRepo repository.PaymentRepository) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{invoiceRepo: invoiceRepo, paymentRepo: paymentRepo}
}

// GetInvoice obtiene una factura con líneas y pagos.
func (uc *InvoiceQueryUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	inv.Items, err = uc.invoiceRepo.GetItemsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	inv.Payments, err = uc.paymentRepo.ListByInvoice(id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetInvoiceEntity obtiene la factura cruda con líneas y pagos (para el
// generador de tickets PDF).
func (uc *InvoiceQueryUseCase) GetInvoiceEntity(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	inv.Items, err = uc.invoiceRepo.GetItemsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	inv.Payments, err = uc.paymentRepo.ListByInvoice(id)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListByClient historial de compras de un cliente (proyección para la vista
// de historial; las cabeceras van sin líneas).
func (uc *InvoiceQueryUseCase) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*dto.InvoiceResponse, error) {
	if clientID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.invoiceRepo.ListByClient(clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvoiceResponse(inv))
	}
	return out, nil
}

// ListByStore facturas de una tienda.
func (uc *InvoiceQueryUseCase) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*dto.InvoiceResponse, error) {
	if storeID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.invoiceRepo.ListByStore(storeID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvoiceResponse(inv))
	}
	return out, nil
}

// toInvoiceResponse arma la respuesta completa desde la entidad.
func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		StoreID:       inv.StoreID,
		ClientID:      inv.ClientID,
		Subtotal:      inv.Subtotal,
		DiscountTotal: inv.DiscountTotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue,
		Status:        inv.Status,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		ValidatedAt:   inv.ValidatedAt,
		PaidAt:        inv.PaidAt,
		CancelledAt:   inv.CancelledAt,
		Items:         make([]dto.InvoiceItemResponse, 0, len(inv.Items)),
		Payments:      make([]dto.PaymentResponse, 0, len(inv.Payments)),
	}
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			DiscountPct: item.DiscountPct,
			LineTotal:   item.LineTotal,
			LensSpec:    item.LensSpec,
		})
	}
	for _, p := range inv.Payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			ID:        p.ID,
			InvoiceID: p.InvoiceID,
			Amount:    p.Amount,
			Method:    p.Method,
			Reference: p.Reference,
			Notes:     p.Notes,
			PaidAt:    p.PaidAt,
		})
	}
	return resp
}
