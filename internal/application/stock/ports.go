package stock

import (
	"context"

	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// inventario y reintenta internamente los conflictos de bloqueo un número
// acotado de veces antes de devolver domain.ErrContention.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error) error
}

// StockCache proyección de lectura del stock actual (eventualmente consistente
// con la última escritura confirmada). Guarda el snapshot completo de la
// consulta para que un hit no toque la BD. Las mutaciones solo invalidan; la
// verdad vive en PostgreSQL.
type StockCache interface {
	GetProductStock(ctx context.Context, productID string) (*entity.Product, bool, error)
	SetProductStock(ctx context.Context, product *entity.Product) error
	Invalidate(ctx context.Context, productIDs ...string) error
}
