package repository

import "github.com/tu-usuario/optica-pos/internal/domain/entity"

// StoreRepository puerto de persistencia para tiendas.
type StoreRepository interface {
	Create(store *entity.Store) error
	GetByID(id string) (*entity.Store, error)
	List(limit, offset int) ([]*entity.Store, error)
}
