package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gofiber/fiber/v2"
)

// providerFailure maps list/location errors to a status and a message that
// never exposes raw transport text.
func providerFailure(c *fiber.Ctx, provider providers.Provider, err error) error {
	switch {
	case errors.Is(err, providers.ErrUnknownProvider):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": fmt.Sprintf("provider %q is not available", provider)})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"message": "the request was cancelled before the source answered"})
	case providers.IsTransport(err):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message":  fmt.Sprintf("The %s source is unavailable right now. Please try again later.", provider),
			"provider": provider,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to reach provider"})
	}
}
