package handler

import "github.com/gofiber/fiber/v2"

// validationFailed returns the per-field error lists together with the
// submitted values so the form can be re-rendered as entered. No
// mutation has happened by this point.
func validationFailed(c *fiber.Ctx, fieldErrors map[string][]string, values interface{}) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": fieldErrors,
		"values": values,
	})
}
