package handler

import (
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GetSubjectTree returns every subject with its chapters.
// @Summary List subjects with chapters
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.SubjectResponse
// @Router /subjects [get]
func (h *CatalogHandler) GetSubjectTree(c *fiber.Ctx) error {
	tree, err := h.catalogService.GetSubjectTree(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(tree)
}

// GetSubject returns one subject with its chapters.
// @Summary Get a subject
// @Tags catalog
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} dto.SubjectResponse
// @Failure 404 {object} middleware.ErrorResponse "Subject not found"
// @Router /subjects/{id} [get]
func (h *CatalogHandler) GetSubject(c *fiber.Ctx) error {
	subject, err := h.catalogService.GetSubject(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(subject)
}

// CreateSubject creates a subject.
// @Summary Create a subject
// @Tags admin-catalog
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body dto.SubjectRequest true "Subject payload"
// @Success 201 {object} dto.SubjectResponse
// @Failure 409 {object} middleware.ErrorResponse "Name already in use"
// @Router /admin/subjects [post]
func (h *CatalogHandler) CreateSubject(c *fiber.Ctx) error {
	var req dto.SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	subject, err := h.catalogService.CreateSubject(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(subject)
}

// UpdateSubject updates a subject.
// @Summary Update a subject
// @Tags admin-catalog
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param body body dto.SubjectRequest true "Subject payload"
// @Success 200 {object} dto.SubjectResponse
// @Failure 404 {object} middleware.ErrorResponse "Subject not found"
// @Router /admin/subjects/{id} [put]
func (h *CatalogHandler) UpdateSubject(c *fiber.Ctx) error {
	var req dto.SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	subject, err := h.catalogService.UpdateSubject(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(subject)
}

// DeleteSubject soft-deletes a subject and its chapters.
// @Summary Delete a subject
// @Tags admin-catalog
// @Security ApiKeyAuth
// @Param id path string true "Subject ID"
// @Success 204 {string} string "No Content"
// @Failure 404 {object} middleware.ErrorResponse "Subject not found"
// @Router /admin/subjects/{id} [delete]
func (h *CatalogHandler) DeleteSubject(c *fiber.Ctx) error {
	if err := h.catalogService.DeleteSubject(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateChapter creates a chapter under a subject.
// @Summary Create a chapter
// @Tags admin-catalog
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param body body dto.ChapterRequest true "Chapter payload"
// @Success 201 {object} dto.ChapterResponse
// @Failure 404 {object} middleware.ErrorResponse "Subject not found"
// @Router /admin/subjects/{id}/chapters [post]
func (h *CatalogHandler) CreateChapter(c *fiber.Ctx) error {
	var req dto.ChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	chapter, err := h.catalogService.CreateChapter(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(chapter)
}

// UpdateChapter updates a chapter.
// @Summary Update a chapter
// @Tags admin-catalog
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Chapter ID"
// @Param body body dto.ChapterRequest true "Chapter payload"
// @Success 200 {object} dto.ChapterResponse
// @Failure 404 {object} middleware.ErrorResponse "Chapter not found"
// @Router /admin/chapters/{id} [put]
func (h *CatalogHandler) UpdateChapter(c *fiber.Ctx) error {
	var req dto.ChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	chapter, err := h.catalogService.UpdateChapter(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(chapter)
}

// DeleteChapter soft-deletes a chapter.
// @Summary Delete a chapter
// @Tags admin-catalog
// @Security ApiKeyAuth
// @Param id path string true "Chapter ID"
// @Success 204 {string} string "No Content"
// @Failure 404 {object} middleware.ErrorResponse "Chapter not found"
// @Router /admin/chapters/{id} [delete]
func (h *CatalogHandler) DeleteChapter(c *fiber.Ctx) error {
	if err := h.catalogService.DeleteChapter(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
