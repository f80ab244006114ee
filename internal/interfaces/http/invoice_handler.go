package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/optica-pos/internal/application/dto"
	"github.com/tu-usuario/optica-pos/internal/application/sales"
	"github.com/tu-usuario/optica-pos/internal/application/usecase"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
)

// TicketGenerator genera el comprobante PDF de una venta.
type TicketGenerator interface {
	GenerateTicket(ctx context.Context, invoice *entity.Invoice, store *entity.Store) ([]byte, error)
}

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	create  *sales.CreateInvoiceUseCase
	payment *sales.ApplyPaymentUseCase
	cancel  *sales.CancelInvoiceUseCase
	queries *sales.InvoiceQueryUseCase
	storeUC *usecase.StoreUseCase
	tickets TicketGenerator
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(
	create *sales.CreateInvoiceUseCase,
	payment *sales.ApplyPaymentUseCase,
	cancel *sales.CancelInvoiceUseCase,
	queries *sales.InvoiceQueryUseCase,
	storeUC *usecase.StoreUseCase,
	tickets TicketGenerator,
) *InvoiceHandler {
	return &InvoiceHandler{
		create: create, payment: payment, cancel: cancel,
		queries: queries, storeUC: storeUC, tickets: tickets,
	}
}

// Create godoc
// @Summary      Crear y validar factura
// @Description  Operación atómica: calcula totales, descuenta inventario,
//
//	persiste la factura y aplica el pago inicial si viene. Si hay
//	lentes a medida dispara el flujo de fulfillment; un fallo ahí no
//	revierte la venta, llega como warning en la respuesta.
//
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "store_id, items, tax_rate, initial_payment opcional"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.create.CreateInvoice(c.Context(), userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID godoc
// @Summary      Obtener factura con líneas y pagos
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Invoice ID"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.queries.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List godoc
// @Summary      Listar facturas por cliente o por tienda
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        client_id  query  string  false  "Filtrar por cliente"
// @Param        store_id   query  string  false  "Filtrar por tienda"
// @Success      200  {array}   dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()

	if clientID := c.Query("client_id"); clientID != "" {
		list, err := h.queries.ListByClient(c.Context(), clientID, page.Limit, page.Offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
	if storeID := c.Query("store_id"); storeID != "" {
		list, err := h.queries.ListByStore(c.Context(), storeID, page.Limit, page.Offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "client_id o store_id requerido"})
}

// ApplyPayment godoc
// @Summary      Aplicar pago a una factura
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Invoice ID"
// @Param        body  body  dto.ApplyPaymentRequest  true  "amount, method"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) ApplyPayment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.payment.ApplyPayment(c.Context(), userID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Cancel godoc
// @Summary      Anular factura
// @Description  Revierte el inventario descontado con movimientos inbound de
//
//	contrapartida. Una factura pagada por completo no se anula.
//
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Invoice ID"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	resp, err := h.cancel.CancelInvoice(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetPDF godoc
// @Summary      Comprobante de venta en PDF
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "Invoice ID"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) GetPDF(c *fiber.Ctx) error {
	invoice, err := h.queries.GetInvoiceEntity(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	store, err := h.storeUC.GetByID(c.Context(), invoice.StoreID)
	if err != nil {
		return respondError(c, err)
	}
	pdfBytes, err := h.tickets.GenerateTicket(c.Context(), invoice, store)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="comprobante-`+invoice.ID+`.pdf"`)
	return c.Send(pdfBytes)
}
