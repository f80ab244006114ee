package repository

import "github.com/tu-usuario/optica-pos/internal/domain/entity"

// InvoiceRepository puerto de persistencia para facturas y sus líneas.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateItem(item *entity.InvoiceItem) error
	Update(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	GetByIDForUpdate(id string) (*entity.Invoice, error)
	GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error)
	ListByClient(clientID string, limit, offset int) ([]*entity.Invoice, error)
	ListByStore(storeID string, limit, offset int) ([]*entity.Invoice, error)
}
