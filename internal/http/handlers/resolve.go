package handlers

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gabriel/content-resolver/internal/resolver"
	"github.com/gofiber/fiber/v2"
)

const resolveTimeout = 60 * time.Second

type ResolveHandler struct {
	service         *resolver.Service
	profileResolver *profileContextResolver
}

func NewResolveHandler(db *sql.DB, service *resolver.Service, defaults providers.Preferences) *ResolveHandler {
	return &ResolveHandler{
		service:         service,
		profileResolver: newProfileContextResolver(db, defaults),
	}
}

// Resolve handles GET /v1/resolve?q=. The profile's preferences apply unless
// provider, auto or lang override them for this request.
func (h *ResolveHandler) Resolve(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "q is required"})
	}

	profile, err := h.profileResolver.Resolve(c)
	if err != nil {
		if errors.Is(err, errProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to resolve profile"})
	}
	prefs, err := h.profileResolver.Preferences(profile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load preferences"})
	}

	if raw := strings.TrimSpace(c.Query("provider")); raw != "" {
		provider, ok := providers.ParseProvider(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "provider must be one of aggregator|catalog|listing"})
		}
		prefs.DefaultProvider = provider
	}
	if raw := strings.TrimSpace(c.Query("auto")); raw != "" {
		auto, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "auto must be a boolean"})
		}
		prefs.AutoFallbackEnabled = auto
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		prefs.PreferredLanguage = lang
	}

	ctx, cancel := context.WithTimeout(c.Context(), resolveTimeout)
	defer cancel()

	outcome, err := h.service.Resolve(ctx, query, prefs)
	if err != nil {
		var exhausted *providers.AllProvidersExhaustedError
		switch {
		case errors.As(err, &exhausted):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message":   exhausted.Message,
				"attempted": exhausted.Attempted,
			})
		case errors.Is(err, providers.ErrEmptyQuery):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "q is required"})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"message": resolver.DescribeFailure(prefs.DefaultProvider, prefs.AutoFallbackEnabled)})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to resolve title"})
		}
	}

	return c.JSON(outcome)
}
