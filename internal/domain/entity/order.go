package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order es la cabecera de un pedido ingerido desde el canal de ventas.
// ExternalID es la clave de idempotencia: a lo sumo un pedido por ExternalID,
// sin importar cuántas veces el canal reentregue el payload.
type Order struct {
	ID          string
	ExternalID  string
	CustomerID  string
	Status      string // estado reportado por el canal (processing, completed, ...)
	TotalAmount decimal.Decimal
	Currency    string
	RiskScore   *decimal.Decimal // puntuación de riesgo del enriquecimiento; nil si no hubo
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem es una línea de pedido. Solo existe como hija de un pedido
// confirmado; Subtotal = Quantity × UnitPrice.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
