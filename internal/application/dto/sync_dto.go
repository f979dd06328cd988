package dto

import "github.com/shopspring/decimal"

// InboundOrderItem es una línea de pedido tal como llega del canal de ventas.
type InboundOrderItem struct {
	SKU       string          `json:"sku"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// InboundOrder es el payload de un pedido del canal de ventas: la entrada de
// la máquina de estados de ingesta. Se conserva tal cual en la cola de
// reintentos cuando el intento falla.
type InboundOrder struct {
	ExternalID    string             `json:"external_id"`
	CustomerEmail string             `json:"customer_email"`
	CustomerName  string             `json:"customer_name,omitempty"`
	Status        string             `json:"status"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Currency      string             `json:"currency"`
	Items         []InboundOrderItem `json:"items"`
}
