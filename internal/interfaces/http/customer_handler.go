package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pedidos-sync/internal/application/catalog"
	"github.com/jhoicas/Pedidos-sync/internal/application/dto"
)

// CustomerHandler consulta de clientes creados por la ingesta.
type CustomerHandler struct {
	directory *catalog.Directory
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(directory *catalog.Directory) *CustomerHandler {
	return &CustomerHandler{directory: directory}
}

// ListCustomers lista clientes con paginación.
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	customers, err := h.directory.ListCustomers(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	resp := make([]fiber.Map, 0, len(customers))
	for _, cu := range customers {
		resp = append(resp, fiber.Map{
			"id":     cu.ID,
			"email":  cu.Email,
			"name":   cu.Name,
			"active": cu.Active,
		})
	}
	return c.JSON(resp)
}
