package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/paperdb/internal/services"
	"github.com/localnerve/paperdb/internal/types"
)

// UserIDKey is the fiber Locals key holding the signed-in user's id.
const UserIDKey = "userID"

// RequireSession validates the Authorizer session cookie and stores the user
// id for the handlers. Role checks belong to the workflow engine.
func RequireSession(sessions services.SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get session cookie
		session := c.Cookies("cookie_session")
		if session == "" {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Authorizer cookie \"cookie_session\" not found",
				Type:    "session",
			}
		}

		userID, err := sessions.ValidateSession(session, c.Protocol(), c.Hostname())
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: fmt.Sprintf("Invalid session: %v", err),
				Type:    "session",
			}
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the id stored by RequireSession, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
