package stock

import (
	"context"

	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

// StockQueryUseCase proyecciones de lectura del inventario: stock actual de un
// producto (con cache Redis de lectura) y libro de movimientos.
type StockQueryUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	cache        StockCache
}

// NewStockQueryUseCase construye el caso de uso. cache puede ser nil.
func NewStockQueryUseCase(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	cache StockCache,
) *StockQueryUseCase {
	return &StockQueryUseCase{productRepo: productRepo, movementRepo: movementRepo, cache: cache}
}

// GetProductStock devuelve el stock actual de un producto. Lee primero la
// cache y un hit responde sin tocar la BD; en miss (o error de cache)
// consulta la BD y repuebla con el snapshot leído (read-through). La
// proyección es eventualmente consistente con la última escritura confirmada.
func (uc *StockQueryUseCase) GetProductStock(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if uc.cache != nil {
		if cached, ok, err := uc.cache.GetProductStock(ctx, productID); err == nil && ok {
			return cached, nil
		}
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if uc.cache != nil {
		_ = uc.cache.SetProductStock(ctx, product)
	}
	return product, nil
}

// ListMovements lista el libro de movimientos de un producto (más reciente primero).
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movementRepo.ListByProduct(productID, limit, offset)
}
