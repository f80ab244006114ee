package fulfillment

import (
	"context"
	"time"

	"github.com/tu-usuario/optica-pos/internal/application/dto"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

// WorkshopUseCase operaciones de seguimiento del taller: avance lineal de
// estado, prioridad y recepción de lentes del proveedor. Cada transición es
// una acción explícita del operador.
type WorkshopUseCase struct {
	woRepo repository.WorkshopOrderRepository
	poRepo repository.PurchaseOrderRepository
}

// NewWorkshopUseCase construye el caso de uso.
func NewWorkshopUseCase(woRepo repository.WorkshopOrderRepository, poRepo repository.PurchaseOrderRepository) *WorkshopUseCase {
	return &WorkshopUseCase{woRepo: woRepo, poRepo: poRepo}
}

// Advance avanza la orden exactamente un paso hacia el estado pedido.
// Saltarse estados o tocar una orden entregada es ErrInvalidTransition.
func (uc *WorkshopUseCase) Advance(ctx context.Context, orderID string, in dto.AdvanceWorkshopOrderRequest) (*dto.WorkshopOrderResponse, error) {
	order, err := uc.woRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if err := order.Advance(in.Status, time.Now()); err != nil {
		return nil, err
	}
	if err := uc.woRepo.Update(order); err != nil {
		return nil, err
	}
	return toWorkshopOrderResponse(order), nil
}

// SetPriority cambia la bandera urgente; rechazado en estado terminal.
func (uc *WorkshopUseCase) SetPriority(ctx context.Context, orderID string, in dto.SetPriorityRequest) (*dto.WorkshopOrderResponse, error) {
	order, err := uc.woRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if err := order.SetUrgent(in.Urgent, time.Now()); err != nil {
		return nil, err
	}
	if err := uc.woRepo.Update(order); err != nil {
		return nil, err
	}
	return toWorkshopOrderResponse(order), nil
}

// Get obtiene una orden de taller.
func (uc *WorkshopUseCase) Get(ctx context.Context, orderID string) (*dto.WorkshopOrderResponse, error) {
	order, err := uc.woRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return toWorkshopOrderResponse(order), nil
}

// ListByStatus lista órdenes por estado (tablero del taller).
func (uc *WorkshopUseCase) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*dto.WorkshopOrderResponse, error) {
	list, err := uc.woRepo.ListByStatus(status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.WorkshopOrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toWorkshopOrderResponse(o))
	}
	return out, nil
}

// GetPurchaseOrder obtiene una orden de compra.
func (uc *WorkshopUseCase) GetPurchaseOrder(ctx context.Context, id string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.poRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return toPurchaseOrderResponse(po), nil
}

// ReceivePurchaseOrder marca la orden de compra como recibida (llegaron los
// lentes del proveedor). No avanza la orden de taller: eso sigue siendo una
// acción aparte del operador.
func (uc *WorkshopUseCase) ReceivePurchaseOrder(ctx context.Context, id string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.poRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	if po.Status != entity.PurchaseOrderStatusSent {
		return nil, domain.ErrInvalidTransition
	}
	po.Status = entity.PurchaseOrderStatusReceived
	po.UpdatedAt = time.Now()
	if err := uc.poRepo.Update(po); err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

func toWorkshopOrderResponse(o *entity.WorkshopOrder) *dto.WorkshopOrderResponse {
	return &dto.WorkshopOrderResponse{
		ID:               o.ID,
		InvoiceID:        o.InvoiceID,
		PurchaseOrderID:  o.PurchaseOrderID,
		PurchaseOrderRef: o.PurchaseOrderRef,
		ClientID:         o.ClientID,
		Status:           o.Status,
		Urgent:           o.Urgent,
		Notes:            o.Notes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		DeliveredAt:      o.DeliveredAt,
	}
}

func toPurchaseOrderResponse(po *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	return &dto.PurchaseOrderResponse{
		ID:           po.ID,
		InvoiceID:    po.InvoiceID,
		Reference:    po.Reference,
		Type:         po.Type,
		Status:       po.Status,
		SupplierID:   po.SupplierID,
		SupplierName: po.SupplierName,
		LensSpec:     po.LensSpec,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}
