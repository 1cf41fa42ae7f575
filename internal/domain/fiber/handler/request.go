package handler

import (
	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/middleware"
	"github.com/fadilmartias/hirematch/internal/util"
	"github.com/fadilmartias/hirematch/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// parseBody decodes the request body into out and validates it.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return util.NewFormError("invalid request body", map[string]string{"body": err.Error()})
	}
	violations, err := validation.Check(out)
	if err != nil {
		return apperror.Internal("cannot validate request", err)
	}
	if len(violations) > 0 {
		return util.NewFormError("invalid request body", validation.Details(violations))
	}
	return nil
}

// requireUser returns the caller identity or an authentication error.
func requireUser(c *fiber.Ctx) (uuid.UUID, error) {
	id := middleware.CurrentUser(c)
	if id == uuid.Nil {
		return uuid.Nil, apperror.Unauthenticated()
	}
	return id, nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("InvalidID", name+" must be a valid UUID")
	}
	return id, nil
}
