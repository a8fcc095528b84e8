package handler

import (
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/middleware"
	"github.com/fariyalkhan17/Quizzmaster/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func parseScoreFilters(c *fiber.Ctx) (dto.ScoreFilters, error) {
	var filters dto.ScoreFilters
	if err := c.QueryParser(&filters); err != nil {
		return filters, domain.NewInvalidInputError("invalid filter parameters")
	}
	return filters, nil
}

// GetProfile returns the authenticated user's profile.
// @Summary Get my profile
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	profile, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateProfile updates the authenticated user's profile.
// @Summary Update my profile
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.UserProfileResponse
// @Failure 422 {object} middleware.ErrorResponse "Invalid payload"
// @Router /users/me [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	profile, err := h.userService.UpdateProfile(c.Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// GetMyScores lists the authenticated user's score history.
// @Summary List my scores
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param quiz_id query string false "Filter by quiz"
// @Param subject_id query string false "Filter by subject"
// @Param start_date query string false "Attempts started on or after (YYYY-MM-DD)"
// @Param end_date query string false "Attempts started on or before (YYYY-MM-DD)"
// @Param passed query bool false "Filter by outcome"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.ScoreListResponse
// @Router /users/me/scores [get]
func (h *UserHandler) GetMyScores(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	filters, err := parseScoreFilters(c)
	if err != nil {
		return err
	}
	pagination, err := parsePagination(c)
	if err != nil {
		return err
	}

	resp, err := h.userService.GetMyScores(c.Context(), userID, filters, pagination)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetMySummary aggregates the authenticated user's quiz history.
// @Summary Summarize my quiz history
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserSummaryResponse
// @Router /users/me/summary [get]
func (h *UserHandler) GetMySummary(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	summary, err := h.userService.GetMySummary(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// ExportMyScoresCSV downloads the authenticated user's score history as CSV.
// @Summary Export my scores as CSV
// @Tags users
// @Security ApiKeyAuth
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Router /users/me/scores/export [get]
func (h *UserHandler) ExportMyScoresCSV(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)

	data, err := h.userService.ExportMyScoresCSV(c.Context(), userID)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="my-scores.csv"`)
	return c.Send(data)
}

// ListUsers is the paginated admin user listing.
// @Summary List users (admin)
// @Tags admin-users
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.UserListResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	pagination, err := parsePagination(c)
	if err != nil {
		return err
	}

	resp, err := h.userService.ListUsers(c.Context(), pagination)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
