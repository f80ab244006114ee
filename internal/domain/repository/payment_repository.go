package repository

import "github.com/tu-usuario/optica-pos/internal/domain/entity"

// PaymentRepository puerto de persistencia para pagos (solo inserción y lectura;
// los pagos son inmutables).
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	ListByInvoice(invoiceID string) ([]*entity.Payment, error)
}
