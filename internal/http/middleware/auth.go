package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"podapi/internal/model"
	"podapi/internal/service"
)

// CurrentUserLocalKey is the Fiber locals key holding the authenticated *model.User.
const CurrentUserLocalKey = "current_user"

// Auth requires a valid bearer access token belonging to an active user.
func Auth(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, "not authenticated")
		}
		user, err := svc.Authenticate(c.UserContext(), token)
		switch {
		case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInactiveUser):
			return unauthorized(c, service.ErrUnauthorized.Error())
		case err != nil:
			SetError(c, err)
			return writeJSONError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Locals(CurrentUserLocalKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals(CurrentUserLocalKey).(*model.User)
	return u, ok && u != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return writeJSONError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message)
}

// writeJSONError mirrors the handler package envelope, which cannot be imported here.
func writeJSONError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"request_id": RequestIDFrom(c),
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}
