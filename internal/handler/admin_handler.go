package handler

import (
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GetSummary returns platform-wide aggregates for the admin dashboard.
// @Summary Admin dashboard summary
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.AdminSummaryResponse
// @Router /admin/summary [get]
func (h *AdminHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.adminService.GetSummary(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// Search searches users, subjects, quizzes and questions by free text.
// @Summary Admin search
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param q query string true "Search text"
// @Param type query string false "users | subjects | quizzes | questions | all"
// @Param limit query int false "Max results per entity type"
// @Success 200 {object} dto.SearchResponse
// @Failure 422 {object} middleware.ErrorResponse "Empty query or unknown type"
// @Router /admin/search [get]
func (h *AdminHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid search parameters")
	}

	resp, err := h.adminService.Search(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
