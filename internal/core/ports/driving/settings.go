package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService reads and writes application settings.
type SettingsService interface {
	// Get returns the effective settings: stored values over defaults, with
	// API keys taken from the environment when not stored.
	Get() (domain.AppSettings, error)

	// Value returns the effective value of a setting as text.
	Value(key string) (string, error)

	// Set parses and validates a value for a known key and persists it.
	Set(key, value string) error

	// Keys returns every known setting key, sorted.
	Keys() []string
}
