package fulfillment_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/optica-pos/internal/application/fulfillment"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/pkg/logger"
)

// Fakes en memoria, indexados por invoice ID igual que las restricciones
// únicas de la base.

type memPORepo struct {
	byInvoice map[string]*entity.PurchaseOrder
	creates   int
}

func newMemPORepo() *memPORepo {
	return &memPORepo{byInvoice: make(map[string]*entity.PurchaseOrder)}
}

func (r *memPORepo) Create(po *entity.PurchaseOrder) error {
	r.creates++
	if _, ok := r.byInvoice[po.InvoiceID]; ok {
		return errors.New("purchase order already exists for invoice")
	}
	r.byInvoice[po.InvoiceID] = po
	return nil
}

func (r *memPORepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	for _, po := range r.byInvoice {
		if po.ID == id {
			return po, nil
		}
	}
	return nil, nil
}

func (r *memPORepo) GetByInvoiceID(invoiceID string) (*entity.PurchaseOrder, error) {
	return r.byInvoice[invoiceID], nil
}

func (r *memPORepo) Update(po *entity.PurchaseOrder) error {
	r.byInvoice[po.InvoiceID] = po
	return nil
}

type memWORepo struct {
	byInvoice map[string]*entity.WorkshopOrder
	creates   int
	failFirst int // cuántos Create fallan antes de empezar a funcionar
}

func newMemWORepo() *memWORepo {
	return &memWORepo{byInvoice: make(map[string]*entity.WorkshopOrder)}
}

func (r *memWORepo) Create(wo *entity.WorkshopOrder) error {
	r.creates++
	if r.failFirst > 0 {
		r.failFirst--
		return errors.New("fallo transitorio")
	}
	if _, ok := r.byInvoice[wo.InvoiceID]; ok {
		return errors.New("workshop order already exists for invoice")
	}
	r.byInvoice[wo.InvoiceID] = wo
	return nil
}

func (r *memWORepo) GetByID(id string) (*entity.WorkshopOrder, error) {
	for _, wo := range r.byInvoice {
		if wo.ID == id {
			return wo, nil
		}
	}
	return nil, nil
}

func (r *memWORepo) GetByInvoiceID(invoiceID string) (*entity.WorkshopOrder, error) {
	return r.byInvoice[invoiceID], nil
}

func (r *memWORepo) Update(wo *entity.WorkshopOrder) error {
	r.byInvoice[wo.InvoiceID] = wo
	return nil
}

func (r *memWORepo) ListByStatus(status string, limit, offset int) ([]*entity.WorkshopOrder, error) {
	var out []*entity.WorkshopOrder
	for _, wo := range r.byInvoice {
		if wo.Status == status {
			out = append(out, wo)
		}
	}
	return out, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func testInvoice() *entity.Invoice {
	return &entity.Invoice{
		ID:       "9f2b1c44-0000-0000-0000-000000000000",
		StoreID:  "store-a",
		ClientID: "client-1",
		Status:   entity.InvoiceStatusPending,
	}
}

func testSpec() *entity.LensSpec {
	return &entity.LensSpec{
		LensType:     "progresivo",
		SupplierID:   "sup-1",
		SupplierName: "Lentes del Norte",
	}
}

func TestSaga_CreaOrdenDeCompraYDeTaller(t *testing.T) {
	poRepo, woRepo := newMemPORepo(), newMemWORepo()
	saga := fulfillment.NewLensFulfillmentSaga(poRepo, woRepo, testLogger())

	po, wo, err := saga.OnInvoiceValidated(context.Background(), testInvoice(), testSpec())
	require.NoError(t, err)
	require.NotNil(t, po)
	require.NotNil(t, wo)

	assert.Equal(t, entity.PurchaseOrderStatusSent, po.Status)
	assert.Equal(t, entity.PurchaseOrderTypeLens, po.Type)
	assert.Equal(t, "sup-1", po.SupplierID)
	assert.True(t, strings.HasPrefix(po.Reference, "OC-"), "referencia legible: %s", po.Reference)

	assert.Equal(t, entity.WorkshopStatusAwaitingLenses, wo.Status)
	assert.Equal(t, po.ID, wo.PurchaseOrderID)
	assert.Equal(t, "client-1", wo.ClientID)
	assert.False(t, wo.Urgent)
}

func TestSaga_IdempotentePorFactura(t *testing.T) {
	poRepo, woRepo := newMemPORepo(), newMemWORepo()
	saga := fulfillment.NewLensFulfillmentSaga(poRepo, woRepo, testLogger())
	inv, spec := testInvoice(), testSpec()

	po1, wo1, err := saga.OnInvoiceValidated(context.Background(), inv, spec)
	require.NoError(t, err)

	// Reejecutar para la misma factura reutiliza ambas órdenes.
	po2, wo2, err := saga.OnInvoiceValidated(context.Background(), inv, spec)
	require.NoError(t, err)

	assert.Equal(t, po1.ID, po2.ID)
	assert.Equal(t, wo1.ID, wo2.ID)
	assert.Equal(t, 1, poRepo.creates)
	assert.Equal(t, 1, woRepo.creates)
}

func TestSaga_ReintentaLaOrdenDeTaller(t *testing.T) {
	poRepo, woRepo := newMemPORepo(), newMemWORepo()
	woRepo.failFirst = 2 // dos fallos transitorios, el tercer intento entra
	saga := fulfillment.NewLensFulfillmentSaga(poRepo, woRepo, testLogger())

	po, wo, err := saga.OnInvoiceValidated(context.Background(), testInvoice(), testSpec())
	require.NoError(t, err)
	require.NotNil(t, wo)
	assert.Equal(t, po.ID, wo.PurchaseOrderID)
	assert.Equal(t, 3, woRepo.creates)
}

func TestSaga_ReintentosAgotadosDejanConciliacion(t *testing.T) {
	poRepo, woRepo := newMemPORepo(), newMemWORepo()
	woRepo.failFirst = 10 // nunca entra dentro de los intentos del saga
	saga := fulfillment.NewLensFulfillmentSaga(poRepo, woRepo, testLogger())
	inv := testInvoice()

	po, wo, err := saga.OnInvoiceValidated(context.Background(), inv, testSpec())
	assert.ErrorIs(t, err, domain.ErrSagaReconciliation)
	assert.Nil(t, wo)

	// La orden de compra queda en pie para la conciliación manual, y el error
	// identifica ambas puntas.
	require.NotNil(t, po)
	stored, _ := poRepo.GetByInvoiceID(inv.ID)
	require.NotNil(t, stored)
	assert.Contains(t, err.Error(), po.ID)
	assert.Contains(t, err.Error(), inv.ID)
}

func TestSaga_EntradaInvalida(t *testing.T) {
	saga := fulfillment.NewLensFulfillmentSaga(newMemPORepo(), newMemWORepo(), testLogger())

	_, _, err := saga.OnInvoiceValidated(context.Background(), nil, testSpec())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = saga.OnInvoiceValidated(context.Background(), testInvoice(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
