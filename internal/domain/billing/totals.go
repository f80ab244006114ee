package billing

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
)

// Servicio de dominio para el cálculo de totales de una venta y la derivación
// del estado de pago. Es el único lugar donde viven ambas reglas.

// DraftItem es una línea del carrito antes de validar. ProductID vacío indica
// un ítem ad-hoc (ej: lentes a medida) que no descuenta inventario.
type DraftItem struct {
	ProductID   string
	ProductName string
	ProductSKU  string
	Quantity    int
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	LensSpec    *entity.LensSpec
}

// Draft es una factura en memoria, sin persistir: totales ya calculados pero
// sin ID, sin estado y sin efectos sobre el inventario.
type Draft struct {
	StoreID       string
	ClientID      string
	TaxRate       decimal.Decimal
	Items         []DraftItem
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// LineTotal calcula el total de una línea: cantidad × precio × (1 − desc/100).
// Se guarda a precisión completa; el redondeo a centavos ocurre solo al final.
func LineTotal(quantity int, unitPrice, discountPct decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	gross := qty.Mul(unitPrice)
	return gross.Sub(gross.Mul(discountPct).Div(oneHundred))
}

// NewDraft valida el carrito y calcula los totales (cálculo puro, sin efectos).
//
//	subtotal       = Σ cantidad × precio
//	discount_total = Σ cantidad × precio × desc/100
//	tax_amount     = (subtotal − discount_total) × taxRate
//	total          = round½↑(subtotal − discount_total + tax_amount)
//
// Los intermedios quedan a precisión completa; solo el total se redondea a
// centavos (half-up). Un carrito vacío es ErrEmptyInvoice; un total de cero es
// válido (venta gratuita).
func NewDraft(storeID, clientID string, items []DraftItem, taxRate decimal.Decimal) (*Draft, error) {
	if strings.TrimSpace(storeID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyInvoice
	}
	if taxRate.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var subtotal, discountTotal decimal.Decimal
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if item.DiscountPct.IsNegative() || item.DiscountPct.GreaterThan(oneHundred) {
			return nil, domain.ErrInvalidInput
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		gross := qty.Mul(item.UnitPrice)
		subtotal = subtotal.Add(gross)
		discountTotal = discountTotal.Add(gross.Mul(item.DiscountPct).Div(oneHundred))
	}

	taxable := subtotal.Sub(discountTotal)
	taxAmount := taxable.Mul(taxRate)
	// decimal.Round redondea half away from zero; con montos no negativos
	// equivale a half-up sobre centavos.
	total := taxable.Add(taxAmount).Round(2)

	return &Draft{
		StoreID:       storeID,
		ClientID:      clientID,
		TaxRate:       taxRate,
		Items:         items,
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		TaxAmount:     taxAmount,
		Total:         total,
	}, nil
}

// DeriveStatus deriva el estado de pago de una factura persistida a partir de
// total y pagado. Los callers nunca fijan el estado por su cuenta.
func DeriveStatus(total, amountPaid decimal.Decimal, cancelled bool) string {
	switch {
	case cancelled:
		return entity.InvoiceStatusCancelled
	case amountPaid.GreaterThanOrEqual(total):
		return entity.InvoiceStatusPaid
	case amountPaid.GreaterThan(decimal.Zero):
		return entity.InvoiceStatusPartial
	default:
		return entity.InvoiceStatusPending
	}
}

// LensSpecFromItems devuelve la especificación de lentes del primer ítem que
// la tenga, o nil si la venta no incluye lentes a medida.
func LensSpecFromItems(items []DraftItem) *entity.LensSpec {
	for _, item := range items {
		if item.LensSpec != nil {
			return item.LensSpec
		}
	}
	return nil
}
