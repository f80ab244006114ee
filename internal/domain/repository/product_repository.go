package repository

import "github.com/tu-usuario/optica-pos/internal/domain/entity"

// ProductRepository puerto de persistencia para productos (fila por tienda).
// Las variantes ForUpdate bloquean la fila (SELECT FOR UPDATE) y solo tienen
// sentido dentro de una transacción.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByIDForUpdate(id string) (*entity.Product, error)
	GetBySKUAndStore(sku, storeID string) (*entity.Product, error)
	GetBySKUAndStoreForUpdate(sku, storeID string) (*entity.Product, error)
	UpdateStock(id string, newStock int) error
	Update(product *entity.Product) error
	ListByStore(storeID string, limit, offset int) ([]*entity.Product, error)
}
