package handlers

import (
	"context"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gadgetarian/service-tracker/internal/api/dto"
	"github.com/gadgetarian/service-tracker/internal/domain"
	apperrors "github.com/gadgetarian/service-tracker/pkg/util/errorutil"
)

// TechnicianDirectory is the external technician registry.
type TechnicianDirectory interface {
	List(ctx context.Context) ([]domain.Technician, error)
	Create(ctx context.Context, technician domain.Technician) (map[string]any, error)
}

// TechniciansHandler proxies technician management to the registry.
type TechniciansHandler struct {
	directory TechnicianDirectory
}

// NewTechniciansHandler constructs the handler.
func NewTechniciansHandler(directory TechnicianDirectory) *TechniciansHandler {
	return &TechniciansHandler{directory: directory}
}

// List GET /staff/technicians.
func (h *TechniciansHandler) List(c *fiber.Ctx) error {
	technicians, err := h.directory.List(c.UserContext())
	if err != nil {
		return mapServiceError(err)
	}
	items := make([]dto.TechnicianResponse, 0, len(technicians))
	for _, t := range technicians {
		items = append(items, dto.NewTechnicianResponse(t))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /staff/technicians.
func (h *TechniciansHandler) Create(c *fiber.Ctx) error {
	var req dto.TechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	missing := []string{}
	for name, value := range map[string]string{
		"kode_teknisi":  req.Code,
		"nama_teknisi":  req.Name,
		"nomor_telepon": req.Phone,
		"password":      req.Password,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}

	reply, err := h.directory.Create(c.UserContext(), domain.Technician{
		Code:     strings.TrimSpace(req.Code),
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Password: req.Password,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": reply})
}
