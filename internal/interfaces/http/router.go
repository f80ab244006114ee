package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/optica-pos/internal/application/auth"
	"github.com/tu-usuario/optica-pos/internal/application/fulfillment"
	"github.com/tu-usuario/optica-pos/internal/application/sales"
	"github.com/tu-usuario/optica-pos/internal/application/stock"
	"github.com/tu-usuario/optica-pos/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StoreUC         *usecase.StoreUseCase
	ProductUC       *usecase.ProductUseCase
	RecordMovement  *stock.RecordMovementUseCase
	StockQueries    *stock.StockQueryUseCase
	CreateInvoice   *sales.CreateInvoiceUseCase
	ApplyPayment    *sales.ApplyPaymentUseCase
	CancelInvoice   *sales.CancelInvoiceUseCase
	InvoiceQueries  *sales.InvoiceQueryUseCase
	WorkshopUC      *fulfillment.WorkshopUseCase
	AuthUC          *auth.AuthUseCase
	TicketGenerator TicketGenerator
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Stores (protegido)
	stores := protected.Group("/stores")
	storeHandler := NewStoreHandler(deps.StoreUC)
	stores.Post("/", storeHandler.Create)
	stores.Get("/", storeHandler.List)
	stores.Get("/:id", storeHandler.GetByID)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.ListByStore)
	products.Get("/:id", productHandler.GetByID)

	// Stock (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.RecordMovement, deps.StockQueries)
	stockGroup.Post("/movements", stockHandler.RecordMovement)
	stockGroup.Get("/products/:id", stockHandler.GetProductStock)
	stockGroup.Get("/products/:id/movements", stockHandler.ListMovements)

	// Invoices (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(
		deps.CreateInvoice, deps.ApplyPayment, deps.CancelInvoice,
		deps.InvoiceQueries, deps.StoreUC, deps.TicketGenerator,
	)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.GetPDF)
	invoices.Post("/:id/payments", invoiceHandler.ApplyPayment)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)

	// Workshop + Purchase orders (protegido)
	workshopHandler := NewWorkshopHandler(deps.WorkshopUC)
	workshop := protected.Group("/workshop-orders")
	workshop.Get("/", workshopHandler.ListByStatus)
	workshop.Get("/:id", workshopHandler.Get)
	workshop.Post("/:id/advance", workshopHandler.Advance)
	workshop.Put("/:id/priority", workshopHandler.SetPriority)

	purchaseOrders := protected.Group("/purchase-orders")
	purchaseOrders.Get("/:id", workshopHandler.GetPurchaseOrder)
	purchaseOrders.Post("/:id/receive", workshopHandler.ReceivePurchaseOrder)
}
