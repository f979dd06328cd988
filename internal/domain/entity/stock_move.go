package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock.
const (
	MoveTypePurchase   = "purchase"   // compra / stock inicial
	MoveTypeSale       = "sale"       // venta (cantidad negativa)
	MoveTypeAdjustment = "adjustment" // ajuste manual
	MoveTypeReturn     = "return"     // devolución
)

// ValidMoveType indica si t es un tipo de movimiento conocido.
func ValidMoveType(t string) bool {
	switch t {
	case MoveTypePurchase, MoveTypeSale, MoveTypeAdjustment, MoveTypeReturn:
		return true
	}
	return false
}

// StockMove es una entrada del libro de stock: un evento firmado e inmutable.
// Nunca se actualiza ni se borra; el stock actual de un producto es la suma
// de las cantidades de todos sus movimientos.
type StockMove struct {
	ID          string
	ProductID   string
	Quantity    decimal.Decimal // positivo entra, negativo sale
	Type        string
	Reference   string // factura, pedido del canal, nota de ajuste
	Description string
	CreatedAt   time.Time
}
