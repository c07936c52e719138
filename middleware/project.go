package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"uptask/models"
	"uptask/utils"
)

// ProjectExists loads the project named by :projectId together with its team.
func ProjectExists(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID, err := paramID(c, "projectId")
		if err != nil {
			return utils.Fail(c, utils.ErrInvalidAction, "Invalid project ID")
		}

		project, err := models.FindProject(db.WithContext(c.UserContext()), projectID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, utils.ErrNotFound, "Project not found")
		}
		if err != nil {
			return err
		}

		withScope(c, func(s Scope) Scope {
			s.Project = project
			return s
		})
		return c.Next()
	}
}

// HasAuthorization lets only the project manager through. Requires
// Authenticate and ProjectExists.
func HasAuthorization() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope := ScopeFrom(c)
		if scope.Project == nil || !scope.Project.IsManager(scope.User.ID) {
			return utils.Fail(c, utils.ErrInvalidAction, "Invalid action")
		}
		return c.Next()
	}
}

// HasAccess lets the manager and team members through. Outsiders get the
// same answer as for a missing project. Requires Authenticate and
// ProjectExists.
func HasAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope := ScopeFrom(c)
		if scope.Project == nil || !scope.Project.CanAccess(scope.User.ID) {
			return utils.Fail(c, utils.ErrNotFound, "Project not found")
		}
		return c.Next()
	}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("id must be positive")
	}
	return uint(id), nil
}
