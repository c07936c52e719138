package controller

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"uptask/models"
	"uptask/utils"
)

// parseBody decodes and validates the JSON body. The returned error already
// carries the 400 response.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// pairedWriteResult reports the second half of a write whose first half has
// already been applied.
func pairedWriteResult(res *gorm.DB, op string) error {
	if res.Error != nil {
		return fmt.Errorf("%w: %s: %w", models.ErrPairedWrite, op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s: no rows updated", models.ErrPairedWrite, op)
	}
	return nil
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
