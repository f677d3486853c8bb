package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/paperdb/internal/services"
	"github.com/localnerve/paperdb/internal/utils"
)

// ReviewHandler handles review assignment and outcome routes
type ReviewHandler struct {
	Engine *services.Engine
}

// AssignReviewerInput is the body of a reviewer assignment
type AssignReviewerInput struct {
	ReviewerID string `json:"reviewerId"`
}

// ReviewOutcomeInput is the body of a review outcome. Both fields are optional.
type ReviewOutcomeInput struct {
	Comments *string `json:"comments"`
	Score    *int    `json:"score"`
}

// AssignReviewer handles POST /api/papers/:id/versions/:version/reviews
// @Summary Assign a reviewer
// @Description Create a pending review of one paper version. Admin only; the assignee must be a REVIEWER.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path int true "Paper ID"
// @Param version path int true "Version number"
// @Param body body AssignReviewerInput true "Reviewer"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers/{id}/versions/{version}/reviews [post]
func (h *ReviewHandler) AssignReviewer(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	paperID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	versionNumber, err := paramID(c, "version")
	if err != nil {
		return err
	}
	var input AssignReviewerInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	review, err := h.Engine.AssignReviewer(c.UserContext(), paperID, versionNumber, input.ReviewerID, userID)
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "assignReviewer")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, review)
}

// RecordOutcome handles POST /api/reviews/:id/outcome
// @Summary Record a review outcome
// @Description Complete a pending review with optional comments and a score of 1 to 5
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param body body ReviewOutcomeInput true "Outcome"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /reviews/{id}/outcome [post]
func (h *ReviewHandler) RecordOutcome(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	reviewID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var input ReviewOutcomeInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	review, err := h.Engine.RecordReviewOutcome(c.UserContext(), reviewID, input.Comments, input.Score, userID)
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "recordReviewOutcome")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, review)
}
