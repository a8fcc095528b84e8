package handler

import (
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/service"

	"github.com/gofiber/fiber/v2"
)

type QuizHandler struct {
	quizService service.QuizService
}

func NewQuizHandler(quizService service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

func parsePagination(c *fiber.Ctx) (dto.Pagination, error) {
	var pagination dto.Pagination
	if err := c.QueryParser(&pagination); err != nil {
		return pagination, domain.NewInvalidInputError("invalid pagination parameters")
	}
	return pagination, nil
}

// ListQuizzes lists published quizzes, optionally filtered by chapter or
// subject.
// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Param chapter_id query string false "Filter by chapter"
// @Param subject_id query string false "Filter by subject"
// @Param open_only query bool false "Only quizzes open for attempts"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.QuizListResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	pagination, err := parsePagination(c)
	if err != nil {
		return err
	}

	filters := domain.QuizFilters{
		ChapterID:     c.Query("chapter_id"),
		SubjectID:     c.Query("subject_id"),
		OnlyOpen:      c.QueryBool("open_only"),
		OnlyPublished: true,
	}

	resp, err := h.quizService.ListQuizzes(c.Context(), filters, pagination)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListChapterQuizzes lists the published quizzes of one chapter.
// @Summary List quizzes in a chapter
// @Tags quizzes
// @Produce json
// @Param id path string true "Chapter ID"
// @Param open_only query bool false "Only quizzes open for attempts"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.QuizListResponse
// @Router /chapters/{id}/quizzes [get]
func (h *QuizHandler) ListChapterQuizzes(c *fiber.Ctx) error {
	pagination, err := parsePagination(c)
	if err != nil {
		return err
	}

	filters := domain.QuizFilters{
		ChapterID:     c.Params("id"),
		OnlyOpen:      c.QueryBool("open_only"),
		OnlyPublished: true,
	}

	resp, err := h.quizService.ListQuizzes(c.Context(), filters, pagination)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuiz returns one published quiz's metadata.
// @Summary Get a quiz
// @Tags quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} middleware.ErrorResponse "Quiz not found"
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.quizService.GetQuiz(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// ListAllQuizzes is the admin listing: drafts and unpublished quizzes
// included.
// @Summary List quizzes (admin)
// @Tags admin-quizzes
// @Security ApiKeyAuth
// @Produce json
// @Param chapter_id query string false "Filter by chapter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.QuizListResponse
// @Router /admin/quizzes [get]
func (h *QuizHandler) ListAllQuizzes(c *fiber.Ctx) error {
	pagination, err := parsePagination(c)
	if err != nil {
		return err
	}

	filters := domain.QuizFilters{
		ChapterID: c.Query("chapter_id"),
		SubjectID: c.Query("subject_id"),
	}

	resp, err := h.quizService.ListQuizzes(c.Context(), filters, pagination)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuizAdmin returns one quiz with questions, drafts and answer keys.
// @Summary Get a quiz with questions (admin)
// @Tags admin-quizzes
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.AdminQuizDetailResponse
// @Failure 404 {object} middleware.ErrorResponse "Quiz not found"
// @Router /admin/quizzes/{id} [get]
func (h *QuizHandler) GetQuizAdmin(c *fiber.Ctx) error {
	detail, err := h.quizService.GetQuizAdmin(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// CreateQuiz creates an unpublished quiz under a chapter.
// @Summary Create a quiz
// @Tags admin-quizzes
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Chapter ID"
// @Param body body dto.QuizRequest true "Quiz payload"
// @Success 201 {object} dto.QuizResponse
// @Router /admin/chapters/{id}/quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	quiz, err := h.quizService.CreateQuiz(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(quiz)
}

// UpdateQuiz updates a quiz; flipping published on enforces the publication
// rule.
// @Summary Update a quiz
// @Tags admin-quizzes
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param body body dto.QuizRequest true "Quiz payload"
// @Success 200 {object} dto.QuizResponse
// @Failure 409 {object} middleware.ErrorResponse "Quiz cannot be published yet"
// @Router /admin/quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	quiz, err := h.quizService.UpdateQuiz(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// DeleteQuiz soft-deletes a quiz.
// @Summary Delete a quiz
// @Tags admin-quizzes
// @Security ApiKeyAuth
// @Param id path string true "Quiz ID"
// @Success 204 {string} string "No Content"
// @Failure 404 {object} middleware.ErrorResponse "Quiz not found"
// @Router /admin/quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.quizService.DeleteQuiz(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateQuestion adds a question with its options to a quiz.
// @Summary Create a question
// @Tags admin-quizzes
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param body body dto.QuestionRequest true "Question payload"
// @Success 201 {object} dto.QuestionResponse
// @Failure 422 {object} middleware.ErrorResponse "Malformed option set"
// @Router /admin/quizzes/{id}/questions [post]
func (h *QuizHandler) CreateQuestion(c *fiber.Ctx) error {
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	question, err := h.quizService.CreateQuestion(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

// UpdateQuestion rewrites a question and its full option set.
// @Summary Update a question
// @Tags admin-quizzes
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param body body dto.QuestionRequest true "Question payload"
// @Success 200 {object} dto.QuestionResponse
// @Failure 404 {object} middleware.ErrorResponse "Question not found"
// @Router /admin/questions/{id} [put]
func (h *QuizHandler) UpdateQuestion(c *fiber.Ctx) error {
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	question, err := h.quizService.UpdateQuestion(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(question)
}

// DeleteQuestion soft-deletes a question, unpublishing the quiz if it was the
// last one.
// @Summary Delete a question
// @Tags admin-quizzes
// @Security ApiKeyAuth
// @Param id path string true "Question ID"
// @Success 204 {string} string "No Content"
// @Failure 404 {object} middleware.ErrorResponse "Question not found"
// @Router /admin/questions/{id} [delete]
func (h *QuizHandler) DeleteQuestion(c *fiber.Ctx) error {
	if err := h.quizService.DeleteQuestion(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
