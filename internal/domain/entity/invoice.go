package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura de venta.
//
// draft existe solo en memoria (cálculo previo a la validación); una factura
// persistida siempre entra como pending, partial o paid. paid y cancelled son
// terminales; cancelled solo es alcanzable desde pending/partial.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusPending   = "pending"
	InvoiceStatusPartial   = "partial"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice representa la cabecera de una factura de venta.
// Invariantes: AmountDue = Total − AmountPaid (≥ 0 mientras no esté anulada);
// AmountPaid = Σ Payments.Amount.
type Invoice struct {
	ID            string
	StoreID       string
	ClientID      string // opcional: venta de mostrador sin cliente
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxRate       decimal.Decimal // ej: 0.20
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal
	Status        string
	Notes         string
	CreatedBy     string // UserID
	CreatedAt     time.Time
	ValidatedAt   *time.Time
	PaidAt        *time.Time
	CancelledAt   *time.Time
	UpdatedAt     time.Time

	Items    []*InvoiceItem
	Payments []*Payment
}

// IsPayable indica si la factura admite pagos (pending o partial).
func (i *Invoice) IsPayable() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusPartial
}

// IsCancellable indica si la factura puede anularse (pending o partial; nunca paid).
func (i *Invoice) IsCancellable() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusPartial
}

// InvoiceItem representa una línea de la factura. ProductID queda vacío para
// ítems ad-hoc o de lentes a medida; el nombre y la referencia son snapshots
// desacoplados del producto vivo.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	ProductID   string // vacío = ítem sin catálogo
	ProductName string
	ProductSKU  string
	Quantity    int
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal // 0..100
	LineTotal   decimal.Decimal // Quantity × UnitPrice × (1 − DiscountPct/100), sin redondear
	LensSpec    *LensSpec       // presente solo en ítems de lentes a medida
}
