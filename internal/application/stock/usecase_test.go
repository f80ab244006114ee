package stock_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/optica-pos/internal/application/stock"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
	"github.com/tu-usuario/optica-pos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El txRunner clona el estado antes de ejecutar el callback
// y lo restaura si falla, reproduciendo la semántica Commit/Rollback.
// ──────────────────────────────────────────────────────────────────────────────

// errSKUExists imita la violación del índice único (store_id, sku).
var errSKUExists = errors.New("sku already exists in store")

type memState struct {
	products  map[string]entity.Product
	movements []entity.StockMovement
	stores    map[string]entity.Store

	failMovementCreate bool
	raceDestMisses     int // lecturas destino que fingen no ver una fila recién confirmada
	destLockLookups    int
	productReads       int
}

func newMemState() *memState {
	return &memState{
		products: make(map[string]entity.Product),
		stores:   make(map[string]entity.Store),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.stores {
		c.stores[k] = v
	}
	c.movements = append(c.movements, s.movements...)
	c.failMovementCreate = s.failMovementCreate
	return c
}

func (s *memState) restore(from *memState) {
	s.products = from.products
	s.stores = from.stores
	s.movements = from.movements
}

// netMovements suma los deltas del libro para un producto.
func (s *memState) netMovements(productID string) int {
	total := 0
	for i := range s.movements {
		m := s.movements[i]
		if m.ProductID == productID {
			total += m.Delta()
		}
	}
	return total
}

type memProductRepo struct{ s *memState }

func (r *memProductRepo) Create(p *entity.Product) error {
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU && existing.StoreID == p.StoreID {
			return errSKUExists
		}
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.productReads++
	if p, ok := r.s.products[id]; ok {
		cp := p
		return &cp, nil
	}
	return nil, nil
}

func (r *memProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *memProductRepo) GetBySKUAndStore(sku, storeID string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku && p.StoreID == storeID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) GetBySKUAndStoreForUpdate(sku, storeID string) (*entity.Product, error) {
	r.s.destLockLookups++
	if r.s.raceDestMisses > 0 {
		r.s.raceDestMisses--
		return nil, nil
	}
	return r.GetBySKUAndStore(sku, storeID)
}

func (r *memProductRepo) UpdateStock(id string, newStock int) error {
	p, ok := r.s.products[id]
	if !ok {
		return errors.New("producto no existe")
	}
	p.CurrentStock = newStock
	r.s.products[id] = p
	return nil
}

func (r *memProductRepo) Update(p *entity.Product) error {
	r.s.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.StoreID == storeID {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memMovementRepo struct{ s *memState }

func (r *memMovementRepo) Create(m *entity.StockMovement) error {
	if r.s.failMovementCreate {
		return errors.New("fallo inyectado")
	}
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for i := range r.s.movements {
		if r.s.movements[i].ID == id {
			cp := r.s.movements[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := range r.s.movements {
		if r.s.movements[i].ProductID == productID {
			cp := r.s.movements[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) ListByReference(reference string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := range r.s.movements {
		if r.s.movements[i].Reference == reference {
			cp := r.s.movements[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memStoreRepo struct{ s *memState }

func (r *memStoreRepo) Create(st *entity.Store) error {
	r.s.stores[st.ID] = *st
	return nil
}

func (r *memStoreRepo) GetByID(id string) (*entity.Store, error) {
	if st, ok := r.s.stores[id]; ok {
		cp := st
		return &cp, nil
	}
	return nil, nil
}

func (r *memStoreRepo) List(limit, offset int) ([]*entity.Store, error) {
	var out []*entity.Store
	for _, st := range r.s.stores {
		cp := st
		out = append(out, &cp)
	}
	return out, nil
}

// memTxRunner reproduce la semántica del runner real: rollback ante error y
// reintento acotado cuando el error es la violación de unicidad de la carrera
// de creación del destino de un traslado.
type memTxRunner struct{ s *memState }

func (t *memTxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) error) error {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		snapshot := t.s.clone()
		lastErr = fn(&memProductRepo{s: t.s}, &memMovementRepo{s: t.s})
		if lastErr == nil {
			return nil
		}
		t.s.restore(snapshot)
		if !errors.Is(lastErr, errSKUExists) {
			return lastErr
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrContention, lastErr)
}

// fakeStockCache implementación en memoria del puerto de cache.
type fakeStockCache struct {
	snaps  map[string]entity.Product
	getErr error
	sets   int
}

func newFakeStockCache() *fakeStockCache {
	return &fakeStockCache{snaps: make(map[string]entity.Product)}
}

func (c *fakeStockCache) GetProductStock(ctx context.Context, productID string) (*entity.Product, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	if p, ok := c.snaps[productID]; ok {
		cp := p
		return &cp, true, nil
	}
	return nil, false, nil
}

func (c *fakeStockCache) SetProductStock(ctx context.Context, product *entity.Product) error {
	c.snaps[product.ID] = *product
	c.sets++
	return nil
}

func (c *fakeStockCache) Invalidate(ctx context.Context, productIDs ...string) error {
	for _, id := range productIDs {
		delete(c.snaps, id)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func seedProduct(s *memState, id, storeID, sku string, stockQty int) {
	s.products[id] = entity.Product{
		ID:           id,
		StoreID:      storeID,
		SKU:          sku,
		Name:         "Montura " + sku,
		CurrentStock: stockQty,
		MinStock:     2,
		SellingPrice: decimal.NewFromInt(100),
	}
}

func newUseCase(s *memState) *stock.RecordMovementUseCase {
	return stock.NewRecordMovementUseCase(
		&memTxRunner{s: s},
		&memProductRepo{s: s},
		&memStoreRepo{s: s},
		nil,
		testLogger(),
	)
}

func TestRecordMovement_Inbound(t *testing.T) {
	s := newMemState()
	s.stores["store-a"] = entity.Store{ID: "store-a", Name: "Centro"}
	seedProduct(s, "p1", "store-a", "MON-001", 3)
	uc := newUseCase(s)

	movs, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeInbound,
		Quantity:  7,
		Reason:    "compra proveedor",
		CreatedBy: "u1",
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)

	assert.Equal(t, 3, movs[0].PreviousStock)
	assert.Equal(t, 10, movs[0].NewStock)
	assert.Equal(t, 10, s.products["p1"].CurrentStock)
	assert.Equal(t, 7, s.netMovements("p1"), "el stock debe cuadrar con el libro")
}

func TestRecordMovement_OutboundInsuficiente(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 2)
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeOutbound,
		Quantity:  5,
		CreatedBy: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, s.products["p1"].CurrentStock, "nada debe cambiar")
	assert.Empty(t, s.movements)
}

func TestRecordMovement_CantidadInvalida(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 5)
	uc := newUseCase(s)

	for _, qty := range []int{0, -3} {
		_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
			ProductID: "p1",
			Type:      entity.MovementTypeOutbound,
			Quantity:  qty,
			CreatedBy: "u1",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "cantidad %d", qty)
	}
}

func TestRecordMovement_AjusteConSigno(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 10)
	uc := newUseCase(s)

	// Conteo físico encontró 3 unidades menos.
	movs, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeAdjustment,
		Quantity:  -3,
		Reason:    "conteo físico",
		CreatedBy: "u1",
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)

	assert.Equal(t, 3, movs[0].Quantity, "la fila guarda la cantidad absoluta")
	assert.Equal(t, 10, movs[0].PreviousStock)
	assert.Equal(t, 7, movs[0].NewStock)
	assert.Equal(t, 7, s.products["p1"].CurrentStock)
}

func TestRecordMovement_AjusteNoDejaNegativo(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 2)
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeAdjustment,
		Quantity:  -5,
		CreatedBy: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)
	assert.Equal(t, 2, s.products["p1"].CurrentStock)
}

func TestRecordMovement_AjusteCeroInvalido(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 2)
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeAdjustment,
		Quantity:  0,
		CreatedBy: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestRecordMovement_TransferEntreTiendas(t *testing.T) {
	s := newMemState()
	s.stores["store-a"] = entity.Store{ID: "store-a", Name: "Centro"}
	s.stores["store-b"] = entity.Store{ID: "store-b", Name: "Norte"}
	seedProduct(s, "p1", "store-a", "MON-001", 10)
	uc := newUseCase(s)

	movs, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeTransfer,
		Quantity:  5,
		ToStoreID: "store-b",
		Reason:    "reposición sucursal",
		CreatedBy: "u1",
	})
	require.NoError(t, err)
	require.Len(t, movs, 2, "transfer produce dos filas: salida y entrada")

	out, in := movs[0], movs[1]
	assert.Equal(t, entity.MovementTypeTransfer, out.Type)
	assert.Equal(t, entity.MovementTypeTransfer, in.Type)
	assert.Equal(t, "store-a", out.FromStoreID)
	assert.Equal(t, "store-b", out.ToStoreID)
	assert.Equal(t, -5, out.Delta())
	assert.Equal(t, 5, in.Delta())

	assert.Equal(t, 5, s.products["p1"].CurrentStock)

	// La fila destino se creó con el mismo SKU y recibió las unidades.
	dest, err := (&memProductRepo{s: s}).GetBySKUAndStore("MON-001", "store-b")
	require.NoError(t, err)
	require.NotNil(t, dest, "la fila destino debe existir tras el traslado")
	assert.Equal(t, 5, dest.CurrentStock)
	assert.Equal(t, 5, s.netMovements(dest.ID))
}

func TestRecordMovement_TransferInsuficienteNoDejaRastro(t *testing.T) {
	s := newMemState()
	s.stores["store-a"] = entity.Store{ID: "store-a", Name: "Centro"}
	s.stores["store-b"] = entity.Store{ID: "store-b", Name: "Norte"}
	seedProduct(s, "p1", "store-a", "MON-001", 3)
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeTransfer,
		Quantity:  10,
		ToStoreID: "store-b",
		CreatedBy: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 3, s.products["p1"].CurrentStock)
	assert.Empty(t, s.movements, "ninguna de las dos filas debe quedar escrita")
	dest, _ := (&memProductRepo{s: s}).GetBySKUAndStore("MON-001", "store-b")
	assert.Nil(t, dest, "la fila destino creada dentro de la tx debe revertirse")
}

func TestRecordMovement_TransferMismaTienda(t *testing.T) {
	s := newMemState()
	s.stores["store-a"] = entity.Store{ID: "store-a", Name: "Centro"}
	seedProduct(s, "p1", "store-a", "MON-001", 10)
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeTransfer,
		Quantity:  5,
		ToStoreID: "store-a",
		CreatedBy: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordMovement_FalloAlEscribirRevierteStock(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 10)
	s.failMovementCreate = true
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeOutbound,
		Quantity:  4,
		CreatedBy: "u1",
	})
	require.Error(t, err)
	assert.Equal(t, 10, s.products["p1"].CurrentStock, "el UpdateStock previo debe revertirse")
}

func TestRecordMovement_TransferBloqueaLaFilaDestino(t *testing.T) {
	s := newMemState()
	s.stores["store-a"] = entity.Store{ID: "store-a", Name: "Centro"}
	s.stores["store-b"] = entity.Store{ID: "store-b", Name: "Norte"}
	seedProduct(s, "p1", "store-a", "MON-001", 10)
	seedProduct(s, "p2", "store-b", "MON-001", 2)
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeTransfer,
		Quantity:  5,
		ToStoreID: "store-b",
		CreatedBy: "u1",
	})
	require.NoError(t, err)

	// La fila destino se resuelve con la variante con bloqueo.
	assert.Equal(t, 1, s.destLockLookups)
	assert.Equal(t, 7, s.products["p2"].CurrentStock)
}

func TestRecordMovement_TransferCarreraDeCreacionConverge(t *testing.T) {
	// Dos traslados concurrentes hacia un destino inexistente: el perdedor no
	// ve la fila que el ganador acaba de confirmar, su Create choca contra el
	// índice único (store_id, sku) y el runner reintenta la transacción, que
	// ya encuentra la fila. Nunca quedan dos filas para el mismo (sku, tienda).
	s := newMemState()
	s.stores["store-a"] = entity.Store{ID: "store-a", Name: "Centro"}
	s.stores["store-b"] = entity.Store{ID: "store-b", Name: "Norte"}
	seedProduct(s, "p1", "store-a", "MON-001", 10)
	seedProduct(s, "p2", "store-b", "MON-001", 2) // confirmada por el traslado ganador
	s.raceDestMisses = 1
	uc := newUseCase(s)

	movs, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeTransfer,
		Quantity:  5,
		ToStoreID: "store-b",
		CreatedBy: "u1",
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	// Una sola fila para (MON-001, store-b), con el crédito del traslado.
	var destRows []entity.Product
	for _, p := range s.products {
		if p.SKU == "MON-001" && p.StoreID == "store-b" {
			destRows = append(destRows, p)
		}
	}
	require.Len(t, destRows, 1)
	assert.Equal(t, 7, destRows[0].CurrentStock)
	assert.Equal(t, 5, s.products["p1"].CurrentStock)
	assert.Equal(t, 2, s.destLockLookups, "el reintento vuelve a buscar con bloqueo")
}

func TestGetProductStock_CacheHitNoTocaLaBD(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 5)
	cache := newFakeStockCache()
	cache.snaps["p1"] = entity.Product{ID: "p1", StoreID: "store-a", SKU: "MON-001", CurrentStock: 5}
	queries := stock.NewStockQueryUseCase(&memProductRepo{s: s}, &memMovementRepo{s: s}, cache)

	product, err := queries.GetProductStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, product.CurrentStock)
	assert.Equal(t, 0, s.productReads, "un hit responde sin consultar la BD")
}

func TestGetProductStock_MissLeeLaBDYRepuebla(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 5)
	cache := newFakeStockCache()
	queries := stock.NewStockQueryUseCase(&memProductRepo{s: s}, &memMovementRepo{s: s}, cache)

	product, err := queries.GetProductStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, product.CurrentStock)
	assert.Equal(t, 1, s.productReads)
	assert.Equal(t, 1, cache.sets, "el miss repuebla la cache con el snapshot leído")

	// La segunda lectura sale de la cache.
	_, err = queries.GetProductStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.productReads)
}

func TestGetProductStock_MutacionInvalidaLaProyeccion(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 5)
	cache := newFakeStockCache()
	// Snapshot viejo en cache: la BD ya va por 5.
	cache.snaps["p1"] = entity.Product{ID: "p1", StoreID: "store-a", SKU: "MON-001", CurrentStock: 99}
	log := testLogger()
	uc := stock.NewRecordMovementUseCase(&memTxRunner{s: s}, &memProductRepo{s: s}, &memStoreRepo{s: s}, cache, log)
	queries := stock.NewStockQueryUseCase(&memProductRepo{s: s}, &memMovementRepo{s: s}, cache)

	_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "p1",
		Type:      entity.MovementTypeInbound,
		Quantity:  5,
		CreatedBy: "u1",
	})
	require.NoError(t, err)

	// La mutación invalidó la clave: la siguiente lectura es fresca, nunca el 99.
	product, err := queries.GetProductStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, product.CurrentStock)
}

func TestGetProductStock_ErrorDeCacheCaeALaBD(t *testing.T) {
	s := newMemState()
	seedProduct(s, "p1", "store-a", "MON-001", 5)
	cache := newFakeStockCache()
	cache.getErr = errors.New("redis caído")
	queries := stock.NewStockQueryUseCase(&memProductRepo{s: s}, &memMovementRepo{s: s}, cache)

	product, err := queries.GetProductStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, product.CurrentStock)
	assert.Equal(t, 1, s.productReads)
}

func TestRecordMovement_ProductoInexistente(t *testing.T) {
	s := newMemState()
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), stock.MovementInput{
		ProductID: "no-existe",
		Type:      entity.MovementTypeInbound,
		Quantity:  1,
		CreatedBy: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
