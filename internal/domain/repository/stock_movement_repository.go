package repository

import "github.com/tu-usuario/optica-pos/internal/domain/entity"

// StockMovementRepository puerto del libro de movimientos (append-only).
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(reference string) ([]*entity.StockMovement, error)
}
