package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/optica-pos/internal/application/dto"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

// ProductUseCase altas y consultas de catálogo. El stock inicial siempre es
// cero: las existencias entran después por el motor de movimientos, para que
// current_stock nunca tenga unidades sin movimiento que las respalde.
type ProductUseCase struct {
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(productRepo repository.ProductRepository, storeRepo repository.StoreRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, storeRepo: storeRepo}
}

// Create crea el producto con stock cero en la tienda indicada.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*entity.Product, error) {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" || in.StoreID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MinStock < 0 || in.PurchasePrice.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	store, err := uc.storeRepo.GetByID(in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	existing, err := uc.productRepo.GetBySKUAndStore(in.SKU, in.StoreID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		StoreID:       in.StoreID,
		SKU:           in.SKU,
		Name:          in.Name,
		Description:   in.Description,
		CurrentStock:  0,
		MinStock:      in.MinStock,
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID obtiene un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// ListByStore lista el catálogo de una tienda.
func (uc *ProductUseCase) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.Product, error) {
	if storeID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.productRepo.ListByStore(storeID, limit, offset)
}
