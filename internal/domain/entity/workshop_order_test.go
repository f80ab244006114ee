package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
)

func newOrder(status string) *entity.WorkshopOrder {
	return &entity.WorkshopOrder{
		ID:        "wo-1",
		InvoiceID: "inv-1",
		Status:    status,
	}
}

func TestWorkshopOrder_AvanceLinealCompleto(t *testing.T) {
	order := newOrder(entity.WorkshopStatusAwaitingLenses)
	now := time.Now()

	steps := []string{
		entity.WorkshopStatusLensesReceived,
		entity.WorkshopStatusAssemblyInProgress,
		entity.WorkshopStatusReady,
		entity.WorkshopStatusDelivered,
	}
	for _, target := range steps {
		require.NoError(t, order.Advance(target, now), "avance a %s", target)
		assert.Equal(t, target, order.Status)
	}

	assert.True(t, order.IsTerminal())
	require.NotNil(t, order.DeliveredAt)
	assert.Equal(t, now, *order.DeliveredAt)
}

func TestWorkshopOrder_NoPermiteSaltarEstados(t *testing.T) {
	order := newOrder(entity.WorkshopStatusAwaitingLenses)

	err := order.Advance(entity.WorkshopStatusReady, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, entity.WorkshopStatusAwaitingLenses, order.Status, "el estado no debe cambiar")
}

func TestWorkshopOrder_NoPermiteRetroceder(t *testing.T) {
	order := newOrder(entity.WorkshopStatusAssemblyInProgress)

	err := order.Advance(entity.WorkshopStatusLensesReceived, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestWorkshopOrder_EntregadaEsTerminal(t *testing.T) {
	order := newOrder(entity.WorkshopStatusDelivered)

	assert.Empty(t, order.NextStatus())
	err := order.Advance(entity.WorkshopStatusDelivered, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestWorkshopOrder_PrioridadMutableHastaEntrega(t *testing.T) {
	order := newOrder(entity.WorkshopStatusReady)

	require.NoError(t, order.SetUrgent(true, time.Now()))
	assert.True(t, order.Urgent)
	require.NoError(t, order.SetUrgent(false, time.Now()))
	assert.False(t, order.Urgent)

	order.Status = entity.WorkshopStatusDelivered
	err := order.SetUrgent(true, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.False(t, order.Urgent)
}
