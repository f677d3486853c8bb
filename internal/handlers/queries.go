// queries.go
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
	"github.com/localnerve/paperdb/internal/utils"
)

// QueryHandler handles the read-only search, statistics and audit routes
type QueryHandler struct {
	Engine *services.Engine
}

// Search handles GET /api/search?q=
// @Summary Search papers
// @Description Full-text search over current versions, followed by tag matches
// @Tags Queries
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {array} services.SearchResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /search [get]
func (h *QueryHandler) Search(c *fiber.Ctx) error {
	results, err := h.Engine.SearchPapers(c.UserContext(), c.Query("q"))
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "searchPapers")
	}
	return utils.SuccessResponse(c, results, fiber.StatusOK)
}

// MostCited handles GET /api/stats/most-cited
// @Summary Most cited papers
// @Description Papers with their inbound citation counts, most cited first
// @Tags Queries
// @Produce json
// @Success 200 {array} services.CitedPaper
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /stats/most-cited [get]
func (h *QueryHandler) MostCited(c *fiber.Ctx) error {
	rows, err := h.Engine.MostCitedPapers(c.UserContext())
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "mostCitedPapers")
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// ActiveReviewers handles GET /api/stats/active-reviewers
// @Summary Active reviewers
// @Description Users with completed reviews, most completed first
// @Tags Queries
// @Produce json
// @Success 200 {array} services.ActiveReviewer
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /stats/active-reviewers [get]
func (h *QueryHandler) ActiveReviewers(c *fiber.Ctx) error {
	rows, err := h.Engine.ActiveReviewers(c.UserContext())
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "activeReviewers")
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// AuditTrail handles GET /api/audit?table=&key=
// @Summary Audit trail
// @Description Change history of a table or of one record, oldest first. Admin only.
// @Tags Queries
// @Produce json
// @Param table query string true "Table name"
// @Param key query string false "Record key, composite keys joined with ':'"
// @Success 200 {array} models.AuditLogEntry
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /audit [get]
func (h *QueryHandler) AuditTrail(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	if err := h.Engine.RequireRole(c.UserContext(), userID, models.RoleAdmin); err != nil {
		return utils.WorkflowErrorResponse(c, err, "auditTrail")
	}

	table := c.Query("table")
	if table == "" {
		return utils.ErrorResponse(c, "table is required", fiber.StatusBadRequest, "validation")
	}

	entries, err := h.Engine.AuditTrail(c.UserContext(), table, c.Query("key"))
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "auditTrail")
	}
	return utils.SuccessResponse(c, entries, fiber.StatusOK)
}
