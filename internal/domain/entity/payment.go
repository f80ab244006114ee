package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en mostrador.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCheck    = "check"
)

// Payment representa un pago aplicado a una factura. Inmutable una vez
// registrado: la única forma de "deshacerlo" es anular la factura completa.
type Payment struct {
	ID        string
	InvoiceID string
	Amount    decimal.Decimal // > 0
	Method    string
	Reference string
	Notes     string
	PaidAt    time.Time
	CreatedBy string
	CreatedAt time.Time
}
