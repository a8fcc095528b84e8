package handler

import (
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/middleware"
	"github.com/fariyalkhan17/Quizzmaster/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AttemptHandler struct {
	attemptService service.AttemptService
}

func NewAttemptHandler(attemptService service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

func callerIdentity(c *fiber.Ctx) (string, bool) {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	role, _ := c.Locals(middleware.UserRoleKey).(string)
	return userID, role == domain.RoleAdmin
}

// StartAttempt opens (or resumes) an attempt on an open quiz.
// @Summary Start a quiz attempt
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 201 {object} dto.AttemptStartResponse
// @Failure 404 {object} middleware.ErrorResponse "Quiz not found"
// @Failure 409 {object} middleware.ErrorResponse "Quiz not open for attempts"
// @Router /quizzes/{id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *fiber.Ctx) error {
	userID, _ := callerIdentity(c)

	resp, err := h.attemptService.StartAttempt(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetAttempt returns the attempt in its current shape.
// @Summary Get an attempt
// @Description Returns the running state with questions while in progress, the scored result once terminal.
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} dto.AttemptStateResponse
// @Failure 404 {object} middleware.ErrorResponse "Attempt not found"
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *fiber.Ctx) error {
	userID, isAdmin := callerIdentity(c)

	state, err := h.attemptService.GetAttempt(c.Context(), userID, c.Params("id"), isAdmin)
	if err != nil {
		return err
	}
	return c.JSON(state)
}

// SubmitAttempt scores the posted answers and finalizes the attempt.
// @Summary Submit a quiz attempt
// @Tags attempts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param body body dto.SubmitAttemptRequest true "Selected answers"
// @Success 200 {object} dto.AttemptResultResponse
// @Failure 409 {object} middleware.ErrorResponse "Attempt already finalized or expired"
// @Failure 422 {object} middleware.ErrorResponse "Answers do not match the quiz"
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *fiber.Ctx) error {
	userID, _ := callerIdentity(c)

	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	result, err := h.attemptService.SubmitAttempt(c.Context(), userID, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// ListQuizAttempts lists every attempt on a quiz.
// @Summary List attempts of a quiz (admin)
// @Tags admin-attempts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.QuizAttemptListResponse
// @Failure 404 {object} middleware.ErrorResponse "Quiz not found"
// @Router /admin/quizzes/{id}/attempts [get]
func (h *AttemptHandler) ListQuizAttempts(c *fiber.Ctx) error {
	pagination, err := parsePagination(c)
	if err != nil {
		return err
	}

	resp, err := h.attemptService.ListQuizAttempts(c.Context(), c.Params("id"), pagination)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ExportQuizAttemptsCSV downloads every attempt of a quiz as CSV.
// @Summary Export attempts of a quiz as CSV (admin)
// @Tags admin-attempts
// @Security ApiKeyAuth
// @Produce text/csv
// @Param id path string true "Quiz ID"
// @Success 200 {string} string "CSV payload"
// @Failure 404 {object} middleware.ErrorResponse "Quiz not found"
// @Router /admin/quizzes/{id}/attempts/export [get]
func (h *AttemptHandler) ExportQuizAttemptsCSV(c *fiber.Ctx) error {
	quizID := c.Params("id")
	data, err := h.attemptService.ExportQuizAttemptsCSV(c.Context(), quizID)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="quiz-`+quizID+`-attempts.csv"`)
	return c.Send(data)
}
