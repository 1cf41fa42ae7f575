package middleware

import (
	"strings"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserIDHeader carries the authenticated user id set by the upstream gateway.
const UserIDHeader = "X-User-ID"

const userIDKey = "userID"

// Identity reads the caller identity from UserIDHeader. Requests without the
// header pass through anonymously; a malformed header is rejected.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(UserIDHeader))
		if raw == "" {
			return c.Next()
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return util.AppErrorResponse(c, apperror.New(apperror.KindAuthentication, "", "invalid user identity", err))
		}
		c.Locals(userIDKey, id)
		return c.Next()
	}
}

// CurrentUser returns the caller identity, or uuid.Nil when anonymous.
func CurrentUser(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
