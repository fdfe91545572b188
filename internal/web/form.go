package web

import (
	"strconv"
	"strings"

	"goldsure-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// FormInt reads a required integer form field.
func FormInt(c *fiber.Ctx, field string) (int, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, &ledger.ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ledger.ValidationError{Field: field, Value: raw, Reason: "must be a whole number"}
	}
	return v, nil
}

// FormIntDefault is FormInt with def used only when the field is absent or blank.
func FormIntDefault(c *fiber.Ctx, field string, def int) (int, error) {
	if strings.TrimSpace(c.FormValue(field)) == "" {
		return def, nil
	}
	return FormInt(c, field)
}

// FormFloat reads a required decimal form field.
func FormFloat(c *fiber.Ctx, field string) (float64, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, &ledger.ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ledger.ValidationError{Field: field, Value: raw, Reason: "must be a number"}
	}
	return v, nil
}

// FormFloatDefault is FormFloat with def used only when the field is absent or blank.
// A present but malformed value is still an error.
func FormFloatDefault(c *fiber.Ctx, field string, def float64) (float64, error) {
	if strings.TrimSpace(c.FormValue(field)) == "" {
		return def, nil
	}
	return FormFloat(c, field)
}

// ParamID reads a positive numeric :id route parameter. Anything else is a 404.
func ParamID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Not found")
	}
	return uint(id), nil
}
