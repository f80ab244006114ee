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

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación de PurchaseOrderRepository. invoice_id
// lleva constraint único: la idempotencia del saga también se sostiene en la
// base, no solo en el flujo.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const purchaseOrderColumns = `id, invoice_id, reference, type, status, supplier_id, supplier_name, lens_spec, notes, created_at, updated_at`

// Create persiste la orden de compra.
func (r *PurchaseOrderRepo) Create(order *entity.PurchaseOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	var lensSpec []byte
	if order.LensSpec != nil {
		b, err := json.Marshal(order.LensSpec)
		if err != nil {
			return fmt.Errorf("marshal lens spec: %w", err)
		}
		lensSpec = b
	}
	query := `
		INSERT INTO purchase_orders (` + purchaseOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.InvoiceID, order.Reference, order.Type, order.Status,
		nullIfEmpty(order.SupplierID), order.SupplierName, lensSpec, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("purchase order already exists for invoice: %w", err)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden de compra por ID.
func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByInvoiceID obtiene la orden de compra de una factura (clave de idempotencia del saga).
func (r *PurchaseOrderRepo) GetByInvoiceID(invoiceID string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE invoice_id = $1`
	return r.scanOne(query, invoiceID)
}

// Update actualiza estado y notas de la orden.
func (r *PurchaseOrderRepo) Update(order *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET status = $2, notes = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.Notes, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) scanOne(query string, args ...any) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var supplierID *string
	var lensSpec []byte
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&po.ID, &po.InvoiceID, &po.Reference, &po.Type, &po.Status,
		&supplierID, &po.SupplierName, &lensSpec, &po.Notes,
		&po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	po.SupplierID = derefStr(supplierID)
	if len(lensSpec) > 0 {
		var spec entity.LensSpec
		if err := json.Unmarshal(lensSpec, &spec); err != nil {
			return nil, fmt.Errorf("unmarshal lens spec: %w", err)
		}
		po.LensSpec = &spec
	}
	return &po, nil
}
