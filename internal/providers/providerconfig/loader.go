package providerconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel/content-resolver/internal/providers"
	"gopkg.in/yaml.v3"
)

// LoadFromDir reads every *.yaml/*.yml file in dirPath, keyed by provider.
// Disabled settings are returned too so callers can tell "off" from "absent".
// A missing directory yields no settings. Files that fail to parse are reported
// together while the valid ones are still returned.
func LoadFromDir(dirPath string) (map[providers.Provider]Settings, error) {
	loaded := map[providers.Provider]Settings{}

	trimmed := strings.TrimSpace(dirPath)
	if trimmed == "" {
		return loaded, nil
	}

	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return loaded, nil
		}
		return nil, fmt.Errorf("read provider settings dir: %w", err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			files = append(files, filepath.Join(trimmed, entry.Name()))
		}
	}
	sort.Strings(files)

	errors := make([]string, 0)
	for _, filePath := range files {
		settings, err := loadFile(filePath)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		if _, exists := loaded[settings.Provider]; exists {
			errors = append(errors, fmt.Sprintf("%s: provider %q configured twice", filepath.Base(filePath), settings.Provider))
			continue
		}
		loaded[settings.Provider] = settings
	}

	if len(errors) > 0 {
		return loaded, fmt.Errorf("provider settings failed to load: %s", strings.Join(errors, " | "))
	}

	return loaded, nil
}

func loadFile(filePath string) (Settings, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return Settings{}, err
	}

	var settings Settings
	if err := yaml.Unmarshal(content, &settings); err != nil {
		return Settings{}, err
	}
	if err := settings.normalizeAndValidate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
