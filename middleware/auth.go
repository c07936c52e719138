package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"uptask/models"
	"uptask/utils"
)

// Authenticate resolves the bearer token into the calling user.
func Authenticate(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return utils.Fail(c, utils.ErrUnauthorized, "Not authorized")
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
			return utils.Fail(c, utils.ErrInvalidToken, "Invalid authorization format")
		}

		claims, err := utils.ParseJWTToken(tokenParts[1])
		if err != nil {
			return utils.Fail(c, utils.ErrInvalidToken, "Invalid token")
		}

		var user models.User
		err = db.WithContext(c.UserContext()).
			Select("id", "name", "email").
			First(&user, claims.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same answer as a bad signature so deleted accounts are not revealed
			return utils.Fail(c, utils.ErrInvalidToken, "Invalid token")
		}
		if err != nil {
			return err
		}

		withScope(c, func(s Scope) Scope {
			s.User = AuthenticatedUser{ID: user.ID, Name: user.Name, Email: user.Email}
			return s
		})
		return c.Next()
	}
}
