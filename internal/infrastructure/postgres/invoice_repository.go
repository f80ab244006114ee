package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Las líneas guardan la especificación de lentes como JSONB.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, store_id, client_id, subtotal, discount_total, tax_rate, tax_amount, total, amount_paid, amount_due, status, notes, created_by, created_at, validated_at, paid_at, cancelled_at, updated_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.StoreID, nullIfEmpty(invoice.ClientID),
		invoice.Subtotal, invoice.DiscountTotal, invoice.TaxRate, invoice.TaxAmount,
		invoice.Total, invoice.AmountPaid, invoice.AmountDue,
		invoice.Status, invoice.Notes, invoice.CreatedBy,
		invoice.CreatedAt, invoice.ValidatedAt, invoice.PaidAt, invoice.CancelledAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la factura. LensSpec viaja como JSONB.
func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	var lensSpec []byte
	if item.LensSpec != nil {
		b, err := json.Marshal(item.LensSpec)
		if err != nil {
			return fmt.Errorf("marshal lens spec: %w", err)
		}
		lensSpec = b
	}
	query := `
		INSERT INTO invoice_items (id, invoice_id, product_id, product_name, product_sku, quantity, unit_price, discount_pct, line_total, lens_spec)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.InvoiceID, nullIfEmpty(item.ProductID),
		item.ProductName, item.ProductSKU, item.Quantity,
		item.UnitPrice, item.DiscountPct, item.LineTotal, lensSpec,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// Update actualiza el estado de pago y las marcas de tiempo de la factura.
// Los montos de las líneas nunca cambian después de la validación.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET amount_paid = $2, amount_due = $3, status = $4,
		    paid_at = $5, cancelled_at = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.AmountPaid, invoice.AmountDue, invoice.Status,
		invoice.PaidAt, invoice.CancelledAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByIDForUpdate obtiene la cabecera bloqueando la fila (SELECT FOR UPDATE).
// Serializa pagos y anulaciones concurrentes sobre la misma factura.
func (r *InvoiceRepo) GetByIDForUpdate(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// GetItemsByInvoiceID obtiene todas las líneas de una factura.
func (r *InvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, product_id, product_name, product_sku, quantity, unit_price, discount_pct, line_total, lens_spec
		FROM invoice_items WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var item entity.InvoiceItem
		var productID *string
		var lensSpec []byte
		if err := rows.Scan(
			&item.ID, &item.InvoiceID, &productID, &item.ProductName, &item.ProductSKU,
			&item.Quantity, &item.UnitPrice, &item.DiscountPct, &item.LineTotal, &lensSpec,
		); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		item.ProductID = derefStr(productID)
		if len(lensSpec) > 0 {
			var spec entity.LensSpec
			if err := json.Unmarshal(lensSpec, &spec); err != nil {
				return nil, fmt.Errorf("unmarshal lens spec: %w", err)
			}
			item.LensSpec = &spec
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// ListByClient lista las facturas de un cliente, de la más reciente a la más antigua.
func (r *InvoiceRepo) ListByClient(clientID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices WHERE client_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.scanList(query, clientID, limit, offset)
}

// ListByStore lista las facturas emitidas en una tienda.
func (r *InvoiceRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices WHERE store_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.scanList(query, storeID, limit, offset)
}

func (r *InvoiceRepo) scanOne(query string, args ...any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) scanList(query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var clientID *string
	err := row.Scan(
		&inv.ID, &inv.StoreID, &clientID,
		&inv.Subtotal, &inv.DiscountTotal, &inv.TaxRate, &inv.TaxAmount,
		&inv.Total, &inv.AmountPaid, &inv.AmountDue,
		&inv.Status, &inv.Notes, &inv.CreatedBy,
		&inv.CreatedAt, &inv.ValidatedAt, &inv.PaidAt, &inv.CancelledAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.ClientID = derefStr(clientID)
	return &inv, nil
}
