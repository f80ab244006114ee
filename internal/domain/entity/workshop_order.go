package entity

import (
	"time"

	"github.com/tu-usuario/optica-pos/internal/domain"
)

// Estados de una orden de taller (montaje de lentes a medida).
// La progresión es lineal y cada transición es una acción explícita del
// operador; no se salta ningún estado.
const (
	WorkshopStatusAwaitingLenses     = "awaiting_lenses"
	WorkshopStatusLensesReceived     = "lenses_received"
	WorkshopStatusAssemblyInProgress = "assembly_in_progress"
	WorkshopStatusReady              = "ready"
	WorkshopStatusDelivered          = "delivered"
)

// workshopSequence orden lineal de estados del taller.
var workshopSequence = []string{
	WorkshopStatusAwaitingLenses,
	WorkshopStatusLensesReceived,
	WorkshopStatusAssemblyInProgress,
	WorkshopStatusReady,
	WorkshopStatusDelivered,
}

// WorkshopOrder representa el seguimiento del montaje en taller, ligada a la
// factura de origen y a la orden de compra de los lentes.
type WorkshopOrder struct {
	ID                string
	InvoiceID         string
	PurchaseOrderID   string
	PurchaseOrderRef  string
	ClientID          string
	Status            string
	Urgent            bool // prioridad, mutable mientras no esté entregada
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeliveredAt       *time.Time
}

// IsTerminal indica si la orden ya fue entregada.
func (w *WorkshopOrder) IsTerminal() bool {
	return w.Status == WorkshopStatusDelivered
}

// NextStatus devuelve el estado siguiente en la secuencia, o "" si es terminal.
func (w *WorkshopOrder) NextStatus() string {
	for i, s := range workshopSequence {
		if s == w.Status && i+1 < len(workshopSequence) {
			return workshopSequence[i+1]
		}
	}
	return ""
}

// Advance avanza la orden exactamente un paso en la secuencia. target debe ser
// el estado siguiente (no se permite saltar ni retroceder).
func (w *WorkshopOrder) Advance(target string, now time.Time) error {
	next := w.NextStatus()
	if next == "" || target != next {
		return domain.ErrInvalidTransition
	}
	w.Status = target
	w.UpdatedAt = now
	if target == WorkshopStatusDelivered {
		w.DeliveredAt = &now
	}
	return nil
}

// SetUrgent cambia la prioridad; rechazado en estado terminal.
func (w *WorkshopOrder) SetUrgent(urgent bool, now time.Time) error {
	if w.IsTerminal() {
		return domain.ErrInvalidTransition
	}
	w.Urgent = urgent
	w.UpdatedAt = now
	return nil
}
