package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/services"
	"github.com/localnerve/paperdb/internal/types"
	"github.com/localnerve/paperdb/internal/utils"
)

// UserHandler handles identity maintenance routes. All of them are admin only.
type UserHandler struct {
	Engine *services.Engine
}

// RegisterUserInput is the body of a user registration
type RegisterUserInput struct {
	UserID      string                 `json:"userId"`
	Email       string                 `json:"email"`
	DisplayName string                 `json:"displayName"`
	Roles       types.FlexList[string] `json:"roles"`
}

func parseRole(s string) models.Role {
	return models.Role(strings.ToUpper(strings.TrimSpace(s)))
}

// RegisterUser handles POST /api/users
// @Summary Register a user
// @Description Create a user with roles. Admin only.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body RegisterUserInput true "User"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /users [post]
func (h *UserHandler) RegisterUser(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	var input RegisterUserInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	var roles []models.Role
	for _, r := range types.Strings(input.Roles) {
		roles = append(roles, parseRole(r))
	}

	user, err := h.Engine.RegisterUser(c.UserContext(), models.User{
		UserID:      strings.TrimSpace(input.UserID),
		Email:       input.Email,
		DisplayName: input.DisplayName,
	}, roles, userID)
	if err != nil {
		return utils.WorkflowErrorResponse(c, err, "registerUser")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, user)
}

// GrantRole handles PUT /api/users/:id/roles/:role
// @Summary Grant a role
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Param role path string true "Role" Enums(AUTHOR, REVIEWER, ADMIN)
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /users/{id}/roles/{role} [put]
func (h *UserHandler) GrantRole(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	target, role := c.Params("id"), parseRole(c.Params("role"))

	if err := h.Engine.GrantRole(c.UserContext(), target, role, userID); err != nil {
		return utils.WorkflowErrorResponse(c, err, "grantRole")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, fiber.Map{"userId": target, "role": role})
}

// RevokeRole handles DELETE /api/users/:id/roles/:role
// @Summary Revoke a role
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Param role path string true "Role" Enums(AUTHOR, REVIEWER, ADMIN)
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /users/{id}/roles/{role} [delete]
func (h *UserHandler) RevokeRole(c *fiber.Ctx) error {
	userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	target, role := c.Params("id"), parseRole(c.Params("role"))

	if err := h.Engine.RevokeRole(c.UserContext(), target, role, userID); err != nil {
		return utils.WorkflowErrorResponse(c, err, "revokeRole")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, fiber.Map{"userId": target, "role": role})
}
