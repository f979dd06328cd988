package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
	appsync "github.com/jhoicas/Pedidos-sync/internal/application/sync"
	"github.com/jhoicas/Pedidos-sync/internal/domain"
)

// OrderHandler maneja la ingesta y consulta de pedidos.
type OrderHandler struct {
	pipeline *appsync.Pipeline
}

// NewOrderHandler construye el handler.
func NewOrderHandler(pipeline *appsync.Pipeline) *OrderHandler {
	return &OrderHandler{pipeline: pipeline}
}

// CreateOrder ingiere un pedido del canal. Idempotente: si el external_id ya
// fue confirmado devuelve el pedido existente con 200 en lugar de 201.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.InboundOrder
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	res := h.pipeline.Ingest(c.Context(), in)
	switch res.Status {
	case appsync.StatusCommitted:
		return c.Status(fiber.StatusCreated).JSON(dto.OrderToResponse(res.Order, nil))
	case appsync.StatusDuplicate:
		return c.Status(fiber.StatusOK).JSON(dto.OrderToResponse(res.Order, nil))
	default:
		if errors.Is(res.Err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: res.Err.Error()})
		}
		if errors.Is(res.Err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		// El intento quedó encolado para reintento; se informa como aceptado
		// pero no confirmado.
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INGEST_FAILED", Message: res.Err.Error()})
	}
}

// GetOrder devuelve un pedido por su external_id, con sus líneas.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	externalID := c.Params("external_id")
	order, items, err := h.pipeline.GetOrder(c.Context(), externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.OrderToResponse(order, items))
}
