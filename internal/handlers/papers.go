// papers.go
//
// A versioned paper submission and peer-review workflow service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of paperdb.
// paperdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// paperdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with paperdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/services"
	"github.com/localnerve/paperdb/internal/types"
	"github.com/localnerve/paperdb/internal/utils"
)

// PaperHandler handles paper and version routes
type PaperHandler struct {
	Engine *services.Engine
}

// SubmitVersionInput is the body of a version submission
type SubmitVersionInput struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	FileRef  string `json:"fileRef"`
}

// BulkImportInput is the body of a bulk paper import
type BulkImportInput struct {
	AuthorIDs types.FlexList[string] `json:"authorIds"`
}

// CreatePaper handles POST /api/papers
// @Summary Create a paper
// @Description Open a new DRAFT paper with the signed-in user as corresponding author
// @Tags Papers
// @Produce json
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers [post]
func (h *PaperHandler) CreatePaper(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	paper, err := h.Engine.CreatePaper(c.UserContext(), userID)
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "createPaper")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, paper)
}

// GetPaper handles GET /api/papers/:id
// @Summary Get a paper
// @Description Get a paper with its current version and tags
// @Tags Papers
// @Produce json
// @Param id path int true "Paper ID"
// @Success 200 {object} services.PaperDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers/{id} [get]
func (h *PaperHandler) GetPaper(c *fiber.Ctx) error {
	paperID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.Engine.GetPaper(c.UserContext(), paperID)
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "getPaper")
	}
	return utils.SuccessResponse(c, detail, fiber.StatusOK)
}

// DeletePaper handles DELETE /api/papers/:id
// @Summary Delete a paper
// @Description Delete a paper with its versions, reviews, citations and tags. Admin only.
// @Tags Papers
// @Produce json
// @Param id path int true "Paper ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers/{id} [delete]
func (h *PaperHandler) DeletePaper(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	paperID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Engine.DeletePaper(c.UserContext(), paperID, userID); err != nil {
		return utils.WorkflowErrorResponse(c, err, "deletePaper")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, fiber.Map{"paperId": paperID})
}

// ListVersions handles GET /api/papers/:id/versions
// @Summary List paper versions
// @Description Get the version history of a paper, oldest first
// @Tags Papers
// @Produce json
// @Param id path int true "Paper ID"
// @Success 200 {array} models.PaperVersion
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers/{id}/versions [get]
func (h *PaperHandler) ListVersions(c *fiber.Ctx) error {
	paperID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	versions, err := h.Engine.ListVersions(c.UserContext(), paperID)
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "listVersions")
	}
	return utils.SuccessResponse(c, versions, fiber.StatusOK)
}

// SubmitVersion handles POST /api/papers/:id/versions
// @Summary Submit a paper version
// @Description Submit the next version of a paper. Requires AUTHOR.
// @Tags Papers
// @Accept json
// @Produce json
// @Param id path int true "Paper ID"
// @Param body body SubmitVersionInput true "Version"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers/{id}/versions [post]
func (h *PaperHandler) SubmitVersion(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	paperID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var input SubmitVersionInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	version, err := h.Engine.SubmitPaperVersion(c.UserContext(), paperID, input.Title, input.Abstract, input.FileRef, userID)
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "submitPaperVersion")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, version)
}

// BulkImport handles POST /api/papers/bulk
// @Summary Bulk import papers
// @Description Create one SUBMITTED paper without versions per author id. Admin only.
// @Tags Papers
// @Accept json
// @Produce json
// @Param body body BulkImportInput true "Author ids"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /papers/bulk [post]
func (h *PaperHandler) BulkImport(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	if err := h.Engine.RequireRole(c.UserContext(), userID, models.RoleAdmin); err != nil {
		return utils.WorkflowErrorResponse(c, err, "bulkImportPapers")
	}
	var input BulkImportInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	papers, err := h.Engine.BulkImportPapers(c.UserContext(), types.Strings(input.AuthorIDs))
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "bulkImportPapers")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, papers)
}
