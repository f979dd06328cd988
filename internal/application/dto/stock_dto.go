package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMoveRequest body para POST /api/v1/stock/moves.
type RecordMoveRequest struct {
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Type        string          `json:"type"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
}

// StockMoveResponse movimiento del libro de stock en respuestas HTTP.
type StockMoveResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Type        string          `json:"type"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CurrentStockResponse stock actual de un producto.
type CurrentStockResponse struct {
	ProductID    string          `json:"product_id"`
	CurrentStock decimal.Decimal `json:"current_stock"`
}
