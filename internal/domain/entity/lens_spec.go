package entity

import "github.com/shopspring/decimal"

// LensSpec describe los lentes a medida de una venta: tipo, tratamientos y
// parámetros ópticos por ojo. Viaja con el ítem de factura y se copia a la
// orden de compra que el saga envía al proveedor.
type LensSpec struct {
	LensType     string        `json:"lens_type"` // monofocal, bifocal, progresivo
	Treatments   []string      `json:"treatments,omitempty"`
	SupplierID   string        `json:"supplier_id"`
	SupplierName string        `json:"supplier_name,omitempty"`
	RightEye     LensEyeParams `json:"right_eye"`
	LeftEye      LensEyeParams `json:"left_eye"`
	Notes        string        `json:"notes,omitempty"`
}

// LensEyeParams parámetros ópticos de un ojo.
type LensEyeParams struct {
	Sphere   decimal.Decimal `json:"sphere"`
	Cylinder decimal.Decimal `json:"cylinder"`
	Axis     int             `json:"axis"`
	Addition decimal.Decimal `json:"addition,omitempty"`
}
