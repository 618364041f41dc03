package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gadgetarian/service-tracker/internal/api/dto"
	"github.com/gadgetarian/service-tracker/internal/auth"
	"github.com/gadgetarian/service-tracker/internal/domain"
	"github.com/gadgetarian/service-tracker/internal/repository"
	"github.com/gadgetarian/service-tracker/internal/service"
	apperrors "github.com/gadgetarian/service-tracker/pkg/util/errorutil"
)

// ServicesHandler serves the staff dashboard endpoints.
type ServicesHandler struct {
	store *service.ServiceStore
}

// NewServicesHandler constructs the handler.
func NewServicesHandler(store *service.ServiceStore) *ServicesHandler {
	return &ServicesHandler{store: store}
}

// List GET /staff/services.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	filter, err := parseServiceFilter(c)
	if err != nil {
		return err
	}
	tickets, err := h.store.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ServiceSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewServiceSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items, "total": len(items)})
}

// Create POST /staff/services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := serviceInputFromRequest(req)
	if err != nil {
		return err
	}
	ticket, err := h.store.Create(c.UserContext(), input)
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewServiceDetail(ticket)})
}

// Get GET /staff/services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.byID(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceDetail(ticket)})
}

// Update PATCH /staff/services/:id.
func (h *ServicesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	patch, err := servicePatchFromRequest(req)
	if err != nil {
		return err
	}
	ticket, err := h.store.Update(c.UserContext(), c.Params("id"), patch, req.Version)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceDetail(ticket)})
}

// Delete DELETE /staff/services/:id. Deleting an unknown id succeeds.
func (h *ServicesHandler) Delete(c *fiber.Ctx) error {
	if err := h.store.Delete(c.UserContext(), c.Params("id")); err != nil {
		return mapServiceError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AppendStatus POST /staff/services/:id/status.
func (h *ServicesHandler) AppendStatus(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.Status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return apperrors.NewValidationError("description required", nil)
	}

	ticket, err := h.store.AppendStatusTransition(c.UserContext(), c.Params("id"), req.Status, description, account.Name)
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewServiceDetail(ticket)})
}

// History GET /staff/services/:id/history.
func (h *ServicesHandler) History(c *fiber.Ctx) error {
	ticket, err := h.byID(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":     dto.NewStatusHistory(ticket.StatusHistory),
		"progress": dto.NewProgress(len(ticket.StatusHistory)),
	})
}

func (h *ServicesHandler) byID(c *fiber.Ctx) (*domain.ServiceTicket, error) {
	ticket, found, err := h.store.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFound("service", map[string]any{"id": c.Params("id")})
	}
	return ticket, nil
}

func parseServiceFilter(c *fiber.Ctx) (repository.ServiceFilter, error) {
	filter := repository.ServiceFilter{Search: c.Query("search")}
	if statuses := c.Query("status"); statuses != "" {
		for _, part := range strings.Split(statuses, ",") {
			status := domain.Status(strings.TrimSpace(part))
			if !status.Valid() {
				return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": part})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := c.Query("category"); raw != "" {
		category := domain.Category(raw)
		if !category.Valid() {
			return filter, apperrors.NewValidationError("invalid category filter", map[string]any{"category": raw})
		}
		filter.Category = &category
	}
	return filter, nil
}

func serviceInputFromRequest(req dto.CreateServiceRequest) (service.ServiceInput, error) {
	missing := []string{}
	if strings.TrimSpace(req.DeviceName) == "" {
		missing = append(missing, "device_name")
	}
	if strings.TrimSpace(req.Customer) == "" {
		missing = append(missing, "customer")
	}
	if strings.TrimSpace(req.Issue) == "" {
		missing = append(missing, "issue")
	}
	if len(missing) > 0 {
		return service.ServiceInput{}, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if !req.Category.Valid() {
		return service.ServiceInput{}, apperrors.NewValidationError("invalid category", map[string]any{"category": req.Category})
	}
	if req.Status != "" && !req.Status.Valid() {
		return service.ServiceInput{}, apperrors.NewValidationError("invalid status", map[string]any{"status": req.Status})
	}
	entry, err := parseDateField("entry_date", req.EntryDate)
	if err != nil {
		return service.ServiceInput{}, err
	}
	completion, err := parseDateField("estimated_completion", req.EstimatedCompletion)
	if err != nil {
		return service.ServiceInput{}, err
	}
	return service.ServiceInput{
		ID:                  strings.TrimSpace(req.ID),
		Code:                strings.TrimSpace(req.Code),
		DeviceName:          req.DeviceName,
		Category:            req.Category,
		Issue:               req.Issue,
		Customer:            req.Customer,
		CustomerPhone:       req.CustomerPhone,
		Technician:          req.Technician,
		TechnicianPhone:     req.TechnicianPhone,
		EntryDate:           entry,
		EstimatedCompletion: completion,
		Status:              req.Status,
		SpareParts:          spareParts(req.SpareParts),
		Notes:               req.Notes,
	}, nil
}

func servicePatchFromRequest(req dto.UpdateServiceRequest) (service.ServicePatch, error) {
	patch := service.ServicePatch{
		Code:            req.Code,
		DeviceName:      req.DeviceName,
		Issue:           req.Issue,
		Customer:        req.Customer,
		CustomerPhone:   req.CustomerPhone,
		Technician:      req.Technician,
		TechnicianPhone: req.TechnicianPhone,
		Notes:           req.Notes,
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return patch, apperrors.NewValidationError("invalid category", map[string]any{"category": *req.Category})
		}
		patch.Category = req.Category
	}
	for _, field := range []struct {
		name  string
		value *string
	}{{"device_name", req.DeviceName}, {"customer", req.Customer}, {"code", req.Code}} {
		if field.value != nil && strings.TrimSpace(*field.value) == "" {
			return patch, apperrors.NewValidationError(field.name+" cannot be empty", nil)
		}
	}
	if req.EntryDate != nil {
		entry, err := parseDateField("entry_date", *req.EntryDate)
		if err != nil {
			return patch, err
		}
		patch.EntryDate = &entry
	}
	if req.EstimatedCompletion != nil {
		completion, err := parseDateField("estimated_completion", *req.EstimatedCompletion)
		if err != nil {
			return patch, err
		}
		patch.EstimatedCompletion = &completion
	}
	if req.SpareParts != nil {
		parts := spareParts(*req.SpareParts)
		patch.SpareParts = &parts
	}
	return patch, nil
}

func parseDateField(name, value string) (time.Time, error) {
	t, err := dto.ParseDate(value)
	if err != nil {
		return t, apperrors.NewValidationError("invalid date", map[string]any{"field": name, "layout": dto.DateLayout})
	}
	return t, nil
}

func spareParts(payload []dto.SparePartPayload) []domain.SparePart {
	parts := make([]domain.SparePart, 0, len(payload))
	for _, p := range payload {
		parts = append(parts, domain.SparePart{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	return parts
}
