package repository

import "github.com/tu-usuario/optica-pos/internal/domain/entity"

// WorkshopOrderRepository puerto de persistencia para órdenes de taller.
type WorkshopOrderRepository interface {
	Create(order *entity.WorkshopOrder) error
	GetByID(id string) (*entity.WorkshopOrder, error)
	GetByInvoiceID(invoiceID string) (*entity.WorkshopOrder, error)
	Update(order *entity.WorkshopOrder) error
	ListByStatus(status string, limit, offset int) ([]*entity.WorkshopOrder, error)
}
