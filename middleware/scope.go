package middleware

import (
	"github.com/gofiber/fiber/v2"
	"uptask/models"
)

// AuthenticatedUser is the caller as seen by the rest of the chain. It never
// carries the password digest.
type AuthenticatedUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Scope accumulates what the chain has resolved so far. Every stage stores a
// fresh copy; a stage may rely on the fields filled by earlier stages of the
// same route.
type Scope struct {
	User    AuthenticatedUser
	Project *models.Project
	Task    *models.Task
}

const scopeKey = "scope"

// ScopeFrom returns the scope built by the chain for this request.
func ScopeFrom(c *fiber.Ctx) Scope {
	scope, _ := c.Locals(scopeKey).(Scope)
	return scope
}

func withScope(c *fiber.Ctx, update func(Scope) Scope) {
	c.Locals(scopeKey, update(ScopeFrom(c)))
}
