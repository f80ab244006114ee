package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/optica-pos/internal/application/dto"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/billing"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
	"github.com/tu-usuario/optica-pos/pkg/logger"
)

// CreateInvoiceUseCase crea y valida una factura en una sola transacción:
// descuenta inventario por cada línea con producto, persiste cabecera, líneas
// y pago inicial, y deriva el estado de pago. Si alguna deducción falla no
// queda factura ni movimiento alguno.
type CreateInvoiceUseCase struct {
	txRunner    TxRunner
	stockEngine StockEngine
	saga        FulfillmentSaga
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	log         *logger.Logger
}

// NewCreateInvoiceUseCase construye el caso de uso. saga puede ser nil
// (despliegues sin taller).
func NewCreateInvoiceUseCase(
	txRunner TxRunner,
	stockEngine StockEngine,
	saga FulfillmentSaga,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	log *logger.Logger,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		txRunner:    txRunner,
		stockEngine: stockEngine,
		saga:        saga,
		storeRepo:   storeRepo,
		productRepo: productRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		log:         log,
	}
}

// CreateInvoice valida el carrito (cálculo puro), abre la transacción de venta
// y, tras confirmar, dispara el saga de lentes si la venta incluye lentes a
// medida. El aviso de conciliación del saga viaja en Warnings de la respuesta;
// la venta en sí nunca se revierte por un fallo del saga.
func (uc *CreateInvoiceUseCase) CreateInvoice(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	store, err := uc.storeRepo.GetByID(in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}

	draftItems, err := uc.buildDraftItems(in)
	if err != nil {
		return nil, err
	}
	draft, err := billing.NewDraft(in.StoreID, in.ClientID, draftItems, in.TaxRate)
	if err != nil {
		return nil, err
	}

	// Validar el pago inicial antes de cualquier escritura.
	var initialAmount decimal.Decimal
	if in.InitialPayment != nil {
		initialAmount = in.InitialPayment.Amount
		if !initialAmount.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if initialAmount.GreaterThan(draft.Total) {
			return nil, domain.ErrOverpaymentRejected
		}
	}

	now := time.Now()
	invoiceID := uuid.New().String() // referencia de los movimientos: sale:<invoiceID>
	var inv *entity.Invoice
	var deductedIDs []string

	err = uc.txRunner.RunSale(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		deductedIDs = deductedIDs[:0]

		// 1) Descontar inventario por cada línea con producto. Un error
		// (ej: stock insuficiente) revierte toda la validación.
		reference := "sale:" + invoiceID
		for _, item := range draft.Items {
			if item.ProductID == "" {
				continue
			}
			if _, err := uc.stockEngine.DeductForSaleInTx(
				productRepo, movementRepo,
				item.ProductID, item.Quantity,
				reference, userID, now,
			); err != nil {
				return err
			}
			deductedIDs = append(deductedIDs, item.ProductID)
		}

		// 2) Cabecera con totales del draft y estado derivado en un único lugar.
		amountPaid := decimal.Zero
		if in.InitialPayment != nil {
			amountPaid = initialAmount
		}
		status := billing.DeriveStatus(draft.Total, amountPaid, false)
		validatedAt := now
		inv = &entity.Invoice{
			ID:            invoiceID,
			StoreID:       draft.StoreID,
			ClientID:      draft.ClientID,
			Subtotal:      draft.Subtotal,
			DiscountTotal: draft.DiscountTotal,
			TaxRate:       draft.TaxRate,
			TaxAmount:     draft.TaxAmount,
			Total:         draft.Total,
			AmountPaid:    amountPaid,
			AmountDue:     draft.Total.Sub(amountPaid),
			Status:        status,
			Notes:         in.Notes,
			CreatedBy:     userID,
			CreatedAt:     now,
			ValidatedAt:   &validatedAt,
			UpdatedAt:     now,
		}
		if status == entity.InvoiceStatusPaid {
			paidAt := now
			inv.PaidAt = &paidAt
		}
		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}

		// 3) Líneas con snapshot de nombre/SKU, desacopladas del producto vivo.
		for _, item := range draft.Items {
			line := &entity.InvoiceItem{
				ID:          uuid.New().String(),
				InvoiceID:   invoiceID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				ProductSKU:  item.ProductSKU,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				DiscountPct: item.DiscountPct,
				LineTotal:   billing.LineTotal(item.Quantity, item.UnitPrice, item.DiscountPct),
				LensSpec:    item.LensSpec,
			}
			inv.Items = append(inv.Items, line)
			if err := invoiceRepo.CreateItem(line); err != nil {
				return err
			}
		}

		// 4) Pago inicial en la misma transacción (operación atómica única).
		if in.InitialPayment != nil {
			payment := &entity.Payment{
				ID:        uuid.New().String(),
				InvoiceID: invoiceID,
				Amount:    initialAmount,
				Method:    in.InitialPayment.Method,
				Reference: in.InitialPayment.Reference,
				Notes:     in.InitialPayment.Notes,
				PaidAt:    now,
				CreatedBy: userID,
				CreatedAt: now,
			}
			inv.Payments = append(inv.Payments, payment)
			if err := paymentRepo.Create(payment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.stockEngine.InvalidateCache(ctx, deductedIDs...)

	resp := toInvoiceResponse(inv)

	// 5) Saga de lentes a medida, fuera de la tx de venta: el dinero ya cambió
	// de manos, un fallo aquí se concilia manualmente, no bloquea la venta.
	if spec := billing.LensSpecFromItems(draft.Items); spec != nil && uc.saga != nil {
		if _, _, sagaErr := uc.saga.OnInvoiceValidated(ctx, inv, spec); sagaErr != nil {
			uc.log.Warn().Err(sagaErr).Str("invoice_id", inv.ID).Msg("saga de lentes incompleto")
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("fulfillment: %v", sagaErr))
		}
	}
	return resp, nil
}

// buildDraftItems convierte el request en líneas de draft, resolviendo el
// snapshot de nombre/SKU y el precio desde el catálogo cuando la línea no trae
// uno. Un precio explícito se respeta tal cual, incluido el cero (línea
// gratuita).
func (uc *CreateInvoiceUseCase) buildDraftItems(in dto.CreateInvoiceRequest) ([]billing.DraftItem, error) {
	items := make([]billing.DraftItem, 0, len(in.Items))
	for _, reqItem := range in.Items {
		item := billing.DraftItem{
			ProductID:   reqItem.ProductID,
			ProductName: strings.TrimSpace(reqItem.ProductName),
			Quantity:    reqItem.Quantity,
			DiscountPct: reqItem.DiscountPct,
			LensSpec:    reqItem.LensSpec,
		}
		if reqItem.UnitPrice != nil {
			item.UnitPrice = *reqItem.UnitPrice
		}
		if reqItem.ProductID != "" {
			product, err := uc.productRepo.GetByID(reqItem.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, domain.ErrNotFound
			}
			if product.StoreID != in.StoreID {
				return nil, domain.ErrInvalidInput
			}
			item.ProductName = product.Name
			item.ProductSKU = product.SKU
			if reqItem.UnitPrice == nil {
				item.UnitPrice = product.SellingPrice
			}
		} else if item.ProductName == "" {
			return nil, domain.ErrInvalidInput
		}
		items = append(items, item)
	}
	return items, nil
}
