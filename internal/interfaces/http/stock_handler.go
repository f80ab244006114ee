package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/optica-pos/internal/application/dto"
	"github.com/tu-usuario/optica-pos/internal/application/stock"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de inventario (protegido).
type StockHandler struct {
	record  *stock.RecordMovementUseCase
	queries *stock.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(record *stock.RecordMovementUseCase, queries *stock.StockQueryUseCase) *StockHandler {
	return &StockHandler{record: record, queries: queries}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  inbound/outbound/adjustment producen una fila; transfer produce
//
//	dos filas atómicas (origen y destino).
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, type, quantity (con signo para adjustment), to_store_id (transfer)"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movements, err := h.record.RecordMovement(c.Context(), stock.MovementInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Reference: in.Reference,
		ToStoreID: in.ToStoreID,
		CreatedBy: userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponses(movements))
}

// GetProductStock godoc
// @Summary      Stock actual de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Product ID"
// @Success      200  {object}  dto.ProductStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id} [get]
func (h *StockHandler) GetProductStock(c *fiber.Ctx) error {
	product, err := h.queries.GetProductStock(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductStockResponse{
		ProductID:    product.ID,
		StoreID:      product.StoreID,
		SKU:          product.SKU,
		Name:         product.Name,
		CurrentStock: product.CurrentStock,
		MinStock:     product.MinStock,
		BelowMin:     product.CurrentStock < product.MinStock,
	})
}

// ListMovements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Product ID"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/products/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()
	movements, err := h.queries.ListMovements(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementResponses(movements))
}

func toMovementResponses(movements []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:            m.ID,
			ProductID:     m.ProductID,
			StoreID:       m.StoreID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			PreviousStock: m.PreviousStock,
			NewStock:      m.NewStock,
			FromStoreID:   m.FromStoreID,
			ToStoreID:     m.ToStoreID,
			Reference:     m.Reference,
			Reason:        m.Reason,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}
