package entity

import "time"

// Store representa una tienda/punto de venta de la óptica.
type Store struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
