package dto

import (
	"time"

	"github.com/tu-usuario/optica-pos/internal/domain/entity"
)

// AdvanceWorkshopOrderRequest avanza la orden de taller exactamente un paso.
type AdvanceWorkshopOrderRequest struct {
	Status string `json:"status"` // estado destino (debe ser el siguiente de la secuencia)
}

// SetPriorityRequest cambia la prioridad de la orden de taller.
type SetPriorityRequest struct {
	Urgent bool `json:"urgent"`
}

// WorkshopOrderResponse orden de taller en respuestas.
type WorkshopOrderResponse struct {
	ID               string     `json:"id"`
	InvoiceID        string     `json:"invoice_id"`
	PurchaseOrderID  string     `json:"purchase_order_id"`
	PurchaseOrderRef string     `json:"purchase_order_ref"`
	ClientID         string     `json:"client_id,omitempty"`
	Status           string     `json:"status"`
	Urgent           bool       `json:"urgent"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
}

// PurchaseOrderResponse orden de compra en respuestas.
type PurchaseOrderResponse struct {
	ID           string           `json:"id"`
	InvoiceID    string           `json:"invoice_id"`
	Reference    string           `json:"reference"`
	Type         string           `json:"type"`
	Status       string           `json:"status"`
	SupplierID   string           `json:"supplier_id,omitempty"`
	SupplierName string           `json:"supplier_name,omitempty"`
	LensSpec     *entity.LensSpec `json:"lens_spec,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
