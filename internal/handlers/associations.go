package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/paperdb/internal/services"
	"github.com/localnerve/paperdb/internal/types"
	"github.com/localnerve/paperdb/internal/utils"
)

// AssociationHandler handles citation and tag routes
type AssociationHandler struct {
	Engine *services.Engine
}

// CitationInput is the body of a citation
type CitationInput struct {
	CitedPaperID types.FlexID `json:"citedPaperId"`
}

// TagInput is the body of a tag assignment
type TagInput struct {
	Tag string `json:"tag"`
}

// AddCitation handles POST /api/papers/:id/citations
// @Summary Cite a paper
// @Description Record that the paper cites another paper
// @Tags Associations
// @Accept json
// @Produce json
// @Param id path int true "Citing paper ID"
// @Param body body CitationInput true "Cited paper"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers/{id}/citations [post]
func (h *AssociationHandler) AddCitation(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	citingID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var input CitationInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	citation, err := h.Engine.AddCitation(c.UserContext(), citingID, input.CitedPaperID.Uint64(), userID)
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "addCitation")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, citation)
}

// TagPaper handles POST /api/papers/:id/tags
// @Summary Tag a paper
// @Description Attach a tag to a paper, creating the tag on first use
// @Tags Associations
// @Accept json
// @Produce json
// @Param id path int true "Paper ID"
// @Param body body TagInput true "Tag"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers/{id}/tags [post]
func (h *AssociationHandler) TagPaper(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	paperID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var input TagInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	tag, err := h.Engine.TagPaper(c.UserContext(), paperID, input.Tag, userID)
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "tagPaper")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, tag)
}

// UntagPaper handles DELETE /api/papers/:id/tags/:tag
// @Summary Untag a paper
// @Description Detach a tag from a paper
// @Tags Associations
// @Produce json
// @Param id path int true "Paper ID"
// @Param tag path string true "Tag name"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers/{id}/tags/{tag} [delete]
func (h *AssociationHandler) UntagPaper(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	paperID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	tag, err := url.PathUnescape(c.Params("tag"))
	if err != nil {
		return &types.CustomError{Code: fiber.StatusBadRequest, Message: "invalid tag", Type: string(types.KindValidation)}
	}

	if err := h.Engine.UntagPaper(c.UserContext(), paperID, tag, userID); err != nil {
		return utils.WorkflowErrorResponse(c, err, "untagPaper")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, fiber.Map{"paperId": paperID, "tag": tag})
}
