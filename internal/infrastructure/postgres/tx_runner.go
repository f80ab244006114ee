package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/optica-pos/internal/application/sales"
	"github.com/tu-usuario/optica-pos/internal/application/stock"
	"github.com/tu-usuario/optica-pos/internal/domain"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

// Ensure TxRunner implements stock.TxRunner and sales.TxRunner.
var _ stock.TxRunner = (*TxRunner)(nil)
var _ sales.TxRunner = (*TxRunner)(nil)

// Reintentos ante contención de filas (lock timeout, serialization, deadlock)
// antes de rendirse con ErrContention.
const txMaxAttempts = 3

// lock_timeout por transacción: un FOR UPDATE que espere más que esto falla
// con 55P03 en vez de encolar al caller indefinidamente.
const txLockTimeout = "3s"

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con
// reintento acotado ante contención transitoria. El callback debe ser puro
// respecto a la base (sin efectos fuera de los repos) porque puede ejecutarse
// más de una vez.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) error) error {
	return r.withRetry(ctx, func(tx Querier) error {
		return fn(NewProductRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunSale inicia una transacción con los repos de inventario y ventas
// (validación, pago y anulación de facturas).
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	return r.withRetry(ctx, func(tx Querier) error {
		return fn(
			NewProductRepository(tx),
			NewStockMovementRepository(tx),
			NewInvoiceRepository(tx),
			NewPaymentRepository(tx),
		)
	})
}

// withRetry ejecuta fn dentro de una transacción y la reintenta completa ante
// contención transitoria. Errores de negocio (stock insuficiente, etc.) cortan
// al primer intento; reintentan 55P03/40001/40P01 y también 23505: dentro de
// estas transacciones una violación de unicidad solo la produce la carrera de
// creación de la fila destino de un traslado, y el reintento encuentra la fila
// que confirmó la transacción ganadora.
func (r *TxRunner) withRetry(ctx context.Context, fn func(tx Querier) error) error {
	var lastErr error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		lastErr = r.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if !isLockContention(lastErr) && !isUniqueViolation(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrContention, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '"+txLockTimeout+"'"); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
