package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gabriel/content-resolver/internal/models"
	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gabriel/content-resolver/internal/resolver"
	"github.com/gofiber/fiber/v2"
)

type statusLister interface {
	List(providerKeys ...string) ([]models.ProviderStatus, error)
}

type ProvidersHandler struct {
	registry *providers.Registry
	service  *resolver.Service
	statuses statusLister
}

func NewProvidersHandler(registry *providers.Registry, service *resolver.Service, statuses statusLister) *ProvidersHandler {
	return &ProvidersHandler{registry: registry, service: service, statuses: statuses}
}

func (h *ProvidersHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.registry.List(), "order": h.service.Order()})
}

// Health runs live checks and includes the last status the monitor stored.
func (h *ProvidersHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	recorded, err := h.statuses.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load provider status"})
	}
	return c.JSON(fiber.Map{"items": h.registry.Health(ctx), "recorded": recorded})
}

// Entries handles GET /v1/providers/:provider/entries?id=.
func (h *ProvidersHandler) Entries(c *fiber.Ctx) error {
	provider, ok := providers.ParseProvider(c.Params("provider"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "unknown provider"})
	}
	contentID := strings.TrimSpace(c.Query("id"))
	if contentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), resolveTimeout)
	defer cancel()

	listing, err := h.service.ListEntries(ctx, contentID, provider, resolver.ListOptions{
		CoverImage: c.Query("cover"),
		Language:   c.Query("lang"),
	})
	if err != nil {
		return providerFailure(c, provider, err)
	}
	return c.JSON(listing)
}

// Locations handles GET /v1/providers/:provider/locations?id=.
func (h *ProvidersHandler) Locations(c *fiber.Ctx) error {
	provider, ok := providers.ParseProvider(c.Params("provider"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "unknown provider"})
	}
	entryID := strings.TrimSpace(c.Query("id"))
	if entryID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), resolveTimeout)
	defer cancel()

	locations, err := h.service.GetContentLocations(ctx, entryID, provider)
	if err != nil {
		return providerFailure(c, provider, err)
	}
	return c.JSON(fiber.Map{"provider": provider, "items": locations})
}
