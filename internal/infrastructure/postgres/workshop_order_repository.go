package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
	"github.com/tu-usuario/optica-pos/internal/domain/repository"
)

var _ repository.WorkshopOrderRepository = (*WorkshopOrderRepo)(nil)

// WorkshopOrderRepo implementación de WorkshopOrderRepository (usable con pool o tx).
type WorkshopOrderRepo struct {
	q Querier
}

// NewWorkshopOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkshopOrderRepository(q Querier) *WorkshopOrderRepo {
	return &WorkshopOrderRepo{q: q}
}

const workshopOrderColumns = `id, invoice_id, purchase_order_id, purchase_order_ref, client_id, status, urgent, notes, created_at, updated_at, delivered_at`

// Create persiste la orden de taller.
func (r *WorkshopOrderRepo) Create(order *entity.WorkshopOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	query := `
		INSERT INTO workshop_orders (` + workshopOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.InvoiceID, order.PurchaseOrderID, order.PurchaseOrderRef,
		nullIfEmpty(order.ClientID), order.Status, order.Urgent, order.Notes,
		order.CreatedAt, order.UpdatedAt, order.DeliveredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("workshop order already exists for invoice: %w", err)
		}
		return fmt.Errorf("insert workshop order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden de taller por ID.
func (r *WorkshopOrderRepo) GetByID(id string) (*entity.WorkshopOrder, error) {
	query := `SELECT ` + workshopOrderColumns + ` FROM workshop_orders WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByInvoiceID obtiene la orden de taller ligada a una factura.
func (r *WorkshopOrderRepo) GetByInvoiceID(invoiceID string) (*entity.WorkshopOrder, error) {
	query := `SELECT ` + workshopOrderColumns + ` FROM workshop_orders WHERE invoice_id = $1`
	return r.scanOne(query, invoiceID)
}

// Update actualiza estado, prioridad y marcas de tiempo.
func (r *WorkshopOrderRepo) Update(order *entity.WorkshopOrder) error {
	query := `
		UPDATE workshop_orders
		SET status = $2, urgent = $3, notes = $4, updated_at = $5, delivered_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.Urgent, order.Notes, order.UpdatedAt, order.DeliveredAt,
	)
	if err != nil {
		return fmt.Errorf("update workshop order: %w", err)
	}
	return nil
}

// ListByStatus lista órdenes por estado, urgentes primero (tablero del taller).
func (r *WorkshopOrderRepo) ListByStatus(status string, limit, offset int) ([]*entity.WorkshopOrder, error) {
	query := `
		SELECT ` + workshopOrderColumns + `
		FROM workshop_orders WHERE status = $1
		ORDER BY urgent DESC, created_at LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list workshop orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkshopOrder
	for rows.Next() {
		wo, err := scanWorkshopOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workshop order: %w", err)
		}
		list = append(list, wo)
	}
	return list, rows.Err()
}

func (r *WorkshopOrderRepo) scanOne(query string, args ...any) (*entity.WorkshopOrder, error) {
	wo, err := scanWorkshopOrder(r.q.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workshop order: %w", err)
	}
	return wo, nil
}

func scanWorkshopOrder(row pgx.Row) (*entity.WorkshopOrder, error) {
	var wo entity.WorkshopOrder
	var clientID *string
	err := row.Scan(
		&wo.ID, &wo.InvoiceID, &wo.PurchaseOrderID, &wo.PurchaseOrderRef,
		&clientID, &wo.Status, &wo.Urgent, &wo.Notes,
		&wo.CreatedAt, &wo.UpdatedAt, &wo.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	wo.ClientID = derefStr(clientID)
	return &wo, nil
}
