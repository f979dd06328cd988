package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	"github.com/jhoicas/Pedidos-sync/internal/application/stock"
	"github.com/jhoicas/Pedidos-sync/internal/domain"
	"github.com/jhoicas/Pedidos-sync/internal/domain/entity"
)

// StockHandler maneja el libro de stock: movimientos manuales y consultas.
type StockHandler struct {
	ledger *stock.Ledger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *stock.Ledger) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// RecordMove registra un movimiento manual (compra, ajuste, devolución).
func (h *StockHandler) RecordMove(c *fiber.Ctx) error {
	var in dto.RecordMoveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	move, err := h.ledger.RecordMove(c.Context(), stock.MoveInput{
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		Type:        in.Type,
		Reference:   in.Reference,
		Description: in.Description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(moveToResponse(move))
}

// GetCurrentStock devuelve el stock actual del producto (agregado del libro).
func (h *StockHandler) GetCurrentStock(c *fiber.Ctx) error {
	productID := c.Params("id")
	current, err := h.ledger.CurrentStock(c.Context(), productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.CurrentStockResponse{ProductID: productID, CurrentStock: current})
}

// ListMoves devuelve el historial cronológico de movimientos del producto.
func (h *StockHandler) ListMoves(c *fiber.Ctx) error {
	productID := c.Params("id")
	moves, err := h.ledger.ListMoves(c.Context(), productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	resp := make([]dto.StockMoveResponse, 0, len(moves))
	for _, m := range moves {
		resp = append(resp, moveToResponse(m))
	}
	return c.JSON(resp)
}

func moveToResponse(m *entity.StockMove) dto.StockMoveResponse {
	return dto.StockMoveResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		Type:        m.Type,
		Reference:   m.Reference,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}
