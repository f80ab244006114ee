package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/billing"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestNewDraft_TotalesBasicos(t *testing.T) {
	// 2 × 100.00 con impuesto 20%: subtotal 200, impuesto 40, total 240.
	items := []billing.DraftItem{
		{ProductID: "p1", ProductName: "Montura", Quantity: 2, UnitPrice: d("100.00")},
	}

	draft, err := billing.NewDraft("store-1", "client-1", items, d("0.20"))
	require.NoError(t, err)

	assert.True(t, d("200").Equal(draft.Subtotal), "subtotal: %s", draft.Subtotal)
	assert.True(t, draft.DiscountTotal.IsZero(), "sin descuento: %s", draft.DiscountTotal)
	assert.True(t, d("40").Equal(draft.TaxAmount), "impuesto: %s", draft.TaxAmount)
	assert.True(t, d("240.00").Equal(draft.Total), "total: %s", draft.Total)
}

func TestNewDraft_DescuentoPorLinea(t *testing.T) {
	// 3 × 50.00 con 10% de descuento: bruto 150, descuento 15, gravable 135.
	// Impuesto 20% = 27. Total 162.
	items := []billing.DraftItem{
		{ProductID: "p1", ProductName: "Lente de contacto", Quantity: 3, UnitPrice: d("50.00"), DiscountPct: d("10")},
	}

	draft, err := billing.NewDraft("store-1", "", items, d("0.20"))
	require.NoError(t, err)

	assert.True(t, d("150").Equal(draft.Subtotal))
	assert.True(t, d("15").Equal(draft.DiscountTotal))
	assert.True(t, d("27").Equal(draft.TaxAmount))
	assert.True(t, d("162.00").Equal(draft.Total))
}

func TestNewDraft_RedondeoSoloAlFinal(t *testing.T) {
	// 3 × 33.335: los intermedios quedan a precisión completa y solo el total
	// se redondea a centavos half-up. 100.005 → 100.01 (sin impuesto).
	items := []billing.DraftItem{
		{ProductName: "Estuche", Quantity: 3, UnitPrice: d("33.335")},
	}

	draft, err := billing.NewDraft("store-1", "", items, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, d("100.005").Equal(draft.Subtotal), "subtotal sin redondear: %s", draft.Subtotal)
	assert.True(t, d("100.01").Equal(draft.Total), "total redondeado half-up: %s", draft.Total)
}

func TestNewDraft_CarritoVacio(t *testing.T) {
	_, err := billing.NewDraft("store-1", "", nil, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrEmptyInvoice)
}

func TestNewDraft_CantidadInvalida(t *testing.T) {
	items := []billing.DraftItem{
		{ProductName: "Montura", Quantity: 0, UnitPrice: d("100")},
	}
	_, err := billing.NewDraft("store-1", "", items, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestNewDraft_DescuentoFueraDeRango(t *testing.T) {
	items := []billing.DraftItem{
		{ProductName: "Montura", Quantity: 1, UnitPrice: d("100"), DiscountPct: d("101")},
	}
	_, err := billing.NewDraft("store-1", "", items, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewDraft_TotalCeroEsValido(t *testing.T) {
	// Venta 100% descontada: total cero es válido (cortesía).
	items := []billing.DraftItem{
		{ProductName: "Ajuste de montura", Quantity: 1, UnitPrice: d("100"), DiscountPct: d("100")},
	}

	draft, err := billing.NewDraft("store-1", "", items, d("0.20"))
	require.NoError(t, err)
	assert.True(t, draft.Total.IsZero(), "total: %s", draft.Total)
}

func TestLineTotal_PrecisionCompleta(t *testing.T) {
	// 2 × 99.99 con 12.5% de descuento = 199.98 − 24.9975 = 174.9825, sin redondear.
	got := billing.LineTotal(2, d("99.99"), d("12.5"))
	assert.True(t, d("174.9825").Equal(got), "line total: %s", got)
}

func TestDeriveStatus_Transiciones(t *testing.T) {
	total := d("240.00")

	assert.Equal(t, entity.InvoiceStatusPending, billing.DeriveStatus(total, decimal.Zero, false))
	assert.Equal(t, entity.InvoiceStatusPartial, billing.DeriveStatus(total, d("100"), false))
	assert.Equal(t, entity.InvoiceStatusPaid, billing.DeriveStatus(total, d("240.00"), false))
	assert.Equal(t, entity.InvoiceStatusCancelled, billing.DeriveStatus(total, d("100"), true))
}

func TestDeriveStatus_TotalCeroQuedaPagada(t *testing.T) {
	// Una venta de total cero queda pagada sin necesidad de pagos.
	assert.Equal(t, entity.InvoiceStatusPaid, billing.DeriveStatus(decimal.Zero, decimal.Zero, false))
}

func TestLensSpecFromItems(t *testing.T) {
	spec := &entity.LensSpec{LensType: "progresivo", SupplierID: "sup-1"}
	items := []billing.DraftItem{
		{ProductID: "p1", ProductName: "Montura", Quantity: 1, UnitPrice: d("100")},
		{ProductName: "Lentes a medida", Quantity: 1, UnitPrice: d("300"), LensSpec: spec},
	}

	assert.Same(t, spec, billing.LensSpecFromItems(items))
	assert.Nil(t, billing.LensSpecFromItems(items[:1]))
}
