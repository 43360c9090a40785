package handlers

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gabriel/content-resolver/internal/models"
	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gabriel/content-resolver/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type updatePreferencesRequest struct {
	DefaultProvider     *string `json:"defaultProvider"`
	AutoFallbackEnabled *bool   `json:"autoFallbackEnabled"`
	PreferredLanguage   *string `json:"preferredLanguage"`
}

type PreferencesHandler struct {
	profiles        *repository.ProfileRepository
	repo            *repository.PreferencesRepository
	profileResolver *profileContextResolver
}

func NewPreferencesHandler(db *sql.DB, defaults providers.Preferences) *PreferencesHandler {
	return &PreferencesHandler{
		profiles:        repository.NewProfileRepository(db),
		repo:            repository.NewPreferencesRepository(db),
		profileResolver: newProfileContextResolver(db, defaults),
	}
}

func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
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
	return c.JSON(fiber.Map{"profile": profile.Key, "preferences": prefs})
}

// Update handles PUT /v1/profiles/:profile/preferences. Unknown profiles are
// created; omitted fields keep their current value.
func (h *PreferencesHandler) Update(c *fiber.Ctx) error {
	var req updatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid json body"})
	}

	profile, err := h.profiles.Ensure(c.Params("profile"), "")
	if err != nil || profile == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid profile"})
	}

	current, err := h.profileResolver.Preferences(profile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to load preferences"})
	}

	if req.DefaultProvider != nil {
		provider, ok := providers.ParseProvider(*req.DefaultProvider)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "defaultProvider must be one of aggregator|catalog|listing"})
		}
		current.DefaultProvider = provider
	}
	if req.AutoFallbackEnabled != nil {
		current.AutoFallbackEnabled = *req.AutoFallbackEnabled
	}
	if req.PreferredLanguage != nil {
		language := strings.TrimSpace(*req.PreferredLanguage)
		if language == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "preferredLanguage must not be empty"})
		}
		current.PreferredLanguage = language
	}

	if _, err := h.repo.Upsert(models.ResolutionPreferences{
		ProfileID:           profile.ID,
		DefaultProvider:     current.DefaultProvider.String(),
		AutoFallbackEnabled: current.AutoFallbackEnabled,
		PreferredLanguage:   current.PreferredLanguage,
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to save preferences"})
	}

	return c.JSON(fiber.Map{"profile": profile.Key, "preferences": current})
}
