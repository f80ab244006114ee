package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/optica-pos/internal/application/dto"
	"github.com/tu-usuario/optica-pos/internal/application/fulfillment"
)

// WorkshopHandler maneja las peticiones HTTP del taller y las órdenes de
// compra de lentes (protegido).
type WorkshopHandler struct {
	uc *fulfillment.WorkshopUseCase
}

// NewWorkshopHandler construye el handler.
func NewWorkshopHandler(uc *fulfillment.WorkshopUseCase) *WorkshopHandler {
	return &WorkshopHandler{uc: uc}
}

// Get godoc
// @Summary      Obtener orden de taller
// @Tags         workshop
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Workshop Order ID"
// @Success      200  {object}  dto.WorkshopOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/workshop-orders/{id} [get]
func (h *WorkshopHandler) Get(c *fiber.Ctx) error {
	resp, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListByStatus godoc
// @Summary      Tablero del taller: órdenes por estado, urgentes primero
// @Tags         workshop
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  true  "awaiting_lenses | lenses_received | assembly_in_progress | ready | delivered"
// @Success      200  {array}  dto.WorkshopOrderResponse
// @Router       /api/workshop-orders [get]
func (h *WorkshopHandler) ListByStatus(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()
	list, err := h.uc.ListByStatus(c.Context(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Advance godoc
// @Summary      Avanzar orden de taller un paso
// @Tags         workshop
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "Workshop Order ID"
// @Param        body  body  dto.AdvanceWorkshopOrderRequest  true  "status destino (el siguiente de la secuencia)"
// @Success      200   {object}  dto.WorkshopOrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/workshop-orders/{id}/advance [post]
func (h *WorkshopHandler) Advance(c *fiber.Ctx) error {
	var in dto.AdvanceWorkshopOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Advance(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// SetPriority godoc
// @Summary      Cambiar prioridad de la orden de taller
// @Tags         workshop
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "Workshop Order ID"
// @Param        body  body  dto.SetPriorityRequest  true  "urgent"
// @Success      200   {object}  dto.WorkshopOrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/workshop-orders/{id}/priority [put]
func (h *WorkshopHandler) SetPriority(c *fiber.Ctx) error {
	var in dto.SetPriorityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.SetPriority(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetPurchaseOrder godoc
// @Summary      Obtener orden de compra de lentes
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Purchase Order ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *WorkshopHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	resp, err := h.uc.GetPurchaseOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ReceivePurchaseOrder godoc
// @Summary      Marcar orden de compra como recibida
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Purchase Order ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *WorkshopHandler) ReceivePurchaseOrder(c *fiber.Ctx) error {
	resp, err := h.uc.ReceivePurchaseOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
