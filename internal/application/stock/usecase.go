package stock

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
	"github.com/tu-usuario/optica-pos/pkg/logger"
)

// RecordMovementUseCase registra movimientos de inventario de forma
// transaccional (inbound, outbound, adjustment, transfer) con bloqueo de fila
// (SELECT FOR UPDATE) y Commit/Rollback. Es el único escritor de
// products.current_stock; cada unidad de cambio queda atribuida a una fila en
// stock_movements.
type RecordMovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	cache       StockCache
	log         *logger.Logger
}

// NewRecordMovementUseCase construye el caso de uso. cache puede ser nil.
func NewRecordMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	cache StockCache,
	log *logger.Logger,
) *RecordMovementUseCase {
	return &RecordMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		cache:       cache,
		log:         log,
	}
}

// MovementInput entrada para registrar un movimiento.
// Para inbound/outbound: ProductID, Quantity > 0.
// Para adjustment: Quantity con signo (corrección de conteo físico).
// Para transfer: ProductID (fila origen), ToStoreID, Quantity > 0; la fila
// destino es la del mismo SKU en la tienda destino.
type MovementInput struct {
	ProductID string
	Type      string
	Quantity  int
	Reason    string
	Reference string
	ToStoreID string
	CreatedBy string
}

// RecordMovement inicia una transacción, bloquea la(s) fila(s) de producto,
// aplica la lógica según tipo y hace Commit o Rollback. Devuelve las filas de
// movimiento escritas: una, o dos para transfer (salida en origen, entrada en
// destino) — ambas o ninguna.
func (uc *RecordMovementUseCase) RecordMovement(ctx context.Context, input MovementInput) ([]*entity.StockMovement, error) {
	switch input.Type {
	case entity.MovementTypeInbound, entity.MovementTypeOutbound:
		if input.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if input.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	case entity.MovementTypeAdjustment:
		if input.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if input.Quantity == 0 {
			return nil, domain.ErrInvalidQuantity
		}
	case entity.MovementTypeTransfer:
		if input.ProductID == "" || input.ToStoreID == "" {
			return nil, domain.ErrInvalidInput
		}
		if input.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	default:
		return nil, domain.ErrInvalidInput
	}

	// Validar que el producto exista (solo lectura, fuera de la tx).
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if input.Type == entity.MovementTypeTransfer {
		if input.ToStoreID == product.StoreID {
			return nil, domain.ErrInvalidInput
		}
		dest, err := uc.storeRepo.GetByID(input.ToStoreID)
		if err != nil {
			return nil, err
		}
		if dest == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	var written []*entity.StockMovement

	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		var txErr error
		switch input.Type {
		case entity.MovementTypeInbound:
			written, txErr = uc.doInbound(productRepo, movementRepo, input, now)
		case entity.MovementTypeOutbound:
			written, txErr = uc.doOutbound(productRepo, movementRepo, input, now)
		case entity.MovementTypeAdjustment:
			written, txErr = uc.doAdjustment(productRepo, movementRepo, input, now)
		case entity.MovementTypeTransfer:
			written, txErr = uc.doTransfer(productRepo, movementRepo, product, input, now)
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, written)
	return written, nil
}

// doInbound bloquea la fila del producto, suma la cantidad y registra el movimiento.
func (uc *RecordMovementUseCase) doInbound(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	input MovementInput,
	now time.Time,
) ([]*entity.StockMovement, error) {
	product, err := productRepo.GetByIDForUpdate(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	mov := newMovement(product, entity.MovementTypeInbound, input.Quantity,
		product.CurrentStock, product.CurrentStock+input.Quantity, input, now)
	if err := productRepo.UpdateStock(product.ID, mov.NewStock); err != nil {
		return nil, err
	}
	if err := movementRepo.Create(mov); err != nil {
		return nil, err
	}
	return []*entity.StockMovement{mov}, nil
}

// doOutbound bloquea la fila, verifica stock suficiente, resta y registra.
func (uc *RecordMovementUseCase) doOutbound(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	input MovementInput,
	now time.Time,
) ([]*entity.StockMovement, error) {
	product, err := productRepo.GetByIDForUpdate(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CurrentStock < input.Quantity {
		return nil, domain.ErrInsufficientStock
	}
	mov := newMovement(product, entity.MovementTypeOutbound, input.Quantity,
		product.CurrentStock, product.CurrentStock-input.Quantity, input, now)
	if err := productRepo.UpdateStock(product.ID, mov.NewStock); err != nil {
		return nil, err
	}
	if err := movementRepo.Create(mov); err != nil {
		return nil, err
	}
	return []*entity.StockMovement{mov}, nil
}

// doAdjustment aplica una corrección con signo. Omite el chequeo de stock
// suficiente, pero nunca deja el stock en negativo (ErrInvalidAdjustment).
func (uc *RecordMovementUseCase) doAdjustment(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	input MovementInput,
	now time.Time,
) ([]*entity.StockMovement, error) {
	product, err := productRepo.GetByIDForUpdate(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	newStock := product.CurrentStock + input.Quantity
	if newStock < 0 {
		return nil, domain.ErrInvalidAdjustment
	}
	qty := input.Quantity
	if qty < 0 {
		qty = -qty
	}
	mov := newMovement(product, entity.MovementTypeAdjustment, qty,
		product.CurrentStock, newStock, input, now)
	if err := productRepo.UpdateStock(product.ID, mov.NewStock); err != nil {
		return nil, err
	}
	if err := movementRepo.Create(mov); err != nil {
		return nil, err
	}
	return []*entity.StockMovement{mov}, nil
}

// doTransfer resta en la tienda origen y suma en la fila del mismo SKU en la
// tienda destino, en la misma transacción: dos filas de movimiento o ninguna.
// La fila destino se busca con bloqueo; si no existe se crea con stock cero
// antes de acreditar. Dos traslados concurrentes hacia un destino inexistente
// chocan contra el índice único (store_id, sku): el perdedor aborta con 23505
// y el runner reintenta la transacción, que ya encuentra la fila confirmada.
// Las filas se bloquean en orden global ascendente (store_id, product_id)
// para evitar deadlocks entre traslados cruzados.
func (uc *RecordMovementUseCase) doTransfer(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	source *entity.Product,
	input MovementInput,
	now time.Time,
) ([]*entity.StockMovement, error) {
	dest, err := productRepo.GetBySKUAndStoreForUpdate(source.SKU, input.ToStoreID)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		dest = &entity.Product{
			ID:            uuid.New().String(),
			StoreID:       input.ToStoreID,
			SKU:           source.SKU,
			Name:          source.Name,
			Description:   source.Description,
			CurrentStock:  0,
			MinStock:      source.MinStock,
			PurchasePrice: source.PurchasePrice,
			SellingPrice:  source.SellingPrice,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := productRepo.Create(dest); err != nil {
			return nil, err
		}
	}

	// Bloqueo en orden global fijo: ascendente por (store_id, product_id).
	locks := []struct{ storeID, productID string }{
		{source.StoreID, source.ID},
		{dest.StoreID, dest.ID},
	}
	sort.Slice(locks, func(i, j int) bool {
		if locks[i].storeID != locks[j].storeID {
			return locks[i].storeID < locks[j].storeID
		}
		return locks[i].productID < locks[j].productID
	})
	locked := make(map[string]*entity.Product, 2)
	for _, l := range locks {
		p, err := productRepo.GetByIDForUpdate(l.productID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		locked[l.productID] = p
	}
	source = locked[source.ID]
	dest = locked[dest.ID]

	if source.CurrentStock < input.Quantity {
		return nil, domain.ErrInsufficientStock
	}

	outLeg := newMovement(source, entity.MovementTypeTransfer, input.Quantity,
		source.CurrentStock, source.CurrentStock-input.Quantity, input, now)
	outLeg.FromStoreID = source.StoreID
	outLeg.ToStoreID = dest.StoreID

	inLeg := newMovement(dest, entity.MovementTypeTransfer, input.Quantity,
		dest.CurrentStock, dest.CurrentStock+input.Quantity, input, now)
	inLeg.FromStoreID = source.StoreID
	inLeg.ToStoreID = dest.StoreID

	if err := productRepo.UpdateStock(source.ID, outLeg.NewStock); err != nil {
		return nil, err
	}
	if err := productRepo.UpdateStock(dest.ID, inLeg.NewStock); err != nil {
		return nil, err
	}
	if err := movementRepo.Create(outLeg); err != nil {
		return nil, err
	}
	if err := movementRepo.Create(inLeg); err != nil {
		return nil, err
	}
	return []*entity.StockMovement{outLeg, inLeg}, nil
}

// DeductForSaleInTx descuenta inventario por una línea de venta usando los
// repositorios del caller (misma transacción de la validación de la factura).
// Implementa la interfaz sales.StockEngine.
func (uc *RecordMovementUseCase) DeductForSaleInTx(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	productID string,
	quantity int,
	reference, createdBy string,
	now time.Time,
) (*entity.StockMovement, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := productRepo.GetByIDForUpdate(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CurrentStock < quantity {
		return nil, domain.ErrInsufficientStock
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		StoreID:       product.StoreID,
		Type:          entity.MovementTypeOutbound,
		Quantity:      quantity,
		PreviousStock: product.CurrentStock,
		NewStock:      product.CurrentStock - quantity,
		Reference:     reference,
		Reason:        reference,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}
	if err := productRepo.UpdateStock(product.ID, mov.NewStock); err != nil {
		return nil, err
	}
	if err := movementRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// RestoreForCancelInTx revierte la salida de una línea al anular la factura:
// movimiento inbound compensatorio con la misma cantidad deducida.
func (uc *RecordMovementUseCase) RestoreForCancelInTx(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	productID string,
	quantity int,
	reference, createdBy string,
	now time.Time,
) (*entity.StockMovement, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := productRepo.GetByIDForUpdate(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		StoreID:       product.StoreID,
		Type:          entity.MovementTypeInbound,
		Quantity:      quantity,
		PreviousStock: product.CurrentStock,
		NewStock:      product.CurrentStock + quantity,
		Reference:     reference,
		Reason:        reference,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}
	if err := productRepo.UpdateStock(product.ID, mov.NewStock); err != nil {
		return nil, err
	}
	if err := movementRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// InvalidateCache invalida la proyección de stock tras una tx confirmada por
// otro caso de uso (ventas, anulación).
func (uc *RecordMovementUseCase) InvalidateCache(ctx context.Context, productIDs ...string) {
	if uc.cache == nil || len(productIDs) == 0 {
		return
	}
	if err := uc.cache.Invalidate(ctx, productIDs...); err != nil && uc.log != nil {
		uc.log.Warn().Err(err).Strs("product_ids", productIDs).Msg("invalidar cache de stock")
	}
}

func (uc *RecordMovementUseCase) invalidate(ctx context.Context, movements []*entity.StockMovement) {
	ids := make([]string, 0, len(movements))
	for _, m := range movements {
		ids = append(ids, m.ProductID)
	}
	uc.InvalidateCache(ctx, ids...)
}

// newMovement arma la fila de movimiento con los campos comunes.
func newMovement(product *entity.Product, movType string, quantity, prev, next int, input MovementInput, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		StoreID:       product.StoreID,
		Type:          movType,
		Quantity:      quantity,
		PreviousStock: prev,
		NewStock:      next,
		Reference:     input.Reference,
		Reason:        input.Reason,
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
	}
}
