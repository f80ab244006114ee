package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
)

// InvoiceItemRequest línea del carrito. ProductID vacío = ítem sin catálogo
// (requiere ProductName); LensSpec presente = lentes a medida (dispara el saga
// de fulfillment tras validar). UnitPrice omitido (nil) toma el precio de
// catálogo del producto; un cero explícito es una línea gratuita.
type InvoiceItemRequest struct {
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPct decimal.Decimal  `json:"discount_pct"`
	LensSpec    *entity.LensSpec `json:"lens_spec,omitempty"`
}

// InitialPaymentRequest pago recibido en el mismo acto de la venta.
type InitialPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

// CreateInvoiceRequest crea y valida una factura en una sola operación
// atómica: descuenta inventario, persiste cabecera/líneas y registra el pago
// inicial si viene.
type CreateInvoiceRequest struct {
	StoreID        string                 `json:"store_id"`
	ClientID       string                 `json:"client_id"`
	TaxRate        decimal.Decimal        `json:"tax_rate"`
	Notes          string                 `json:"notes"`
	Items          []InvoiceItemRequest   `json:"items"`
	InitialPayment *InitialPaymentRequest `json:"initial_payment,omitempty"`
}

// ApplyPaymentRequest aplica un pago a una factura pending/partial.
type ApplyPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

// InvoiceItemResponse línea de factura en respuestas.
type InvoiceItemResponse struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id,omitempty"`
	ProductName string           `json:"product_name"`
	ProductSKU  string           `json:"product_sku,omitempty"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	DiscountPct decimal.Decimal  `json:"discount_pct"`
	LineTotal   decimal.Decimal  `json:"line_total"`
	LensSpec    *entity.LensSpec `json:"lens_spec,omitempty"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

// InvoiceResponse factura completa. Warnings transporta avisos no fatales,
// ej: el saga de lentes quedó pendiente de conciliación manual.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	StoreID       string                `json:"store_id"`
	ClientID      string                `json:"client_id,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	DiscountTotal decimal.Decimal       `json:"discount_total"`
	TaxRate       decimal.Decimal       `json:"tax_rate"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	Total         decimal.Decimal       `json:"total"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	AmountDue     decimal.Decimal       `json:"amount_due"`
	Status        string                `json:"status"`
	Notes         string                `json:"notes,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	ValidatedAt   *time.Time            `json:"validated_at,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	Items         []InvoiceItemResponse `json:"items"`
	Payments      []PaymentResponse     `json:"payments"`
	Warnings      []string              `json:"warnings,omitempty"`
}
