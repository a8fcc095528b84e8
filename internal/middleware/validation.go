package middleware

import (
	"github.com/fariyalkhan17/Quizzmaster/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateIDParam checks that the named path parameter is a well-formed
// ULID before the handler touches the database.
func (vm *ValidationMiddleware) ValidateIDParam(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := vm.validator.ValidateULID(param, c.Params(param)); err != nil {
			return err
		}
		return c.Next()
	}
}
