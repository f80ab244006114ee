package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")

	// Motor de inventario.
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidAdjustment = errors.New("el ajuste dejaría el stock en negativo")

	// Ciclo de vida de la venta.
	ErrEmptyInvoice          = errors.New("la factura no tiene ítems")
	ErrInvoiceNotPayable     = errors.New("la factura no admite pagos en su estado actual")
	ErrInvoiceNotCancellable = errors.New("la factura no puede anularse en su estado actual")
	ErrOverpaymentRejected   = errors.New("el pago excede el saldo pendiente de la factura")

	// Taller / fulfillment.
	ErrInvalidTransition = errors.New("transición de estado inválida")

	// Concurrencia: bloqueo de fila no obtenido dentro del tiempo límite.
	ErrContention = errors.New("conflicto de concurrencia, reintente la operación")

	// El saga de lentes quedó a medias: orden de compra creada sin orden de taller.
	ErrSagaReconciliation = errors.New("orden de compra creada sin orden de taller, requiere conciliación manual")
)
