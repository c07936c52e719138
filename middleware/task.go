package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"uptask/models"
	"uptask/utils"
)

// TaskExists loads the task named by :taskId.
func TaskExists(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		taskID, err := paramID(c, "taskId")
		if err != nil {
			return utils.Fail(c, utils.ErrInvalidAction, "Invalid task ID")
		}

		task, err := models.FindTask(db.WithContext(c.UserContext()), taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, utils.ErrNotFound, "Task not found")
		}
		if err != nil {
			return err
		}

		withScope(c, func(s Scope) Scope {
			s.Task = task
			return s
		})
		return c.Next()
	}
}

// TaskBelongsToProject rejects a task addressed under a project it does not
// belong to. Requires ProjectExists and TaskExists.
func TaskBelongsToProject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope := ScopeFrom(c)
		if scope.Project == nil || scope.Task == nil || scope.Task.ProjectID != scope.Project.ID {
			return utils.Fail(c, utils.ErrInvalidAction, "Invalid action")
		}
		return c.Next()
	}
}
