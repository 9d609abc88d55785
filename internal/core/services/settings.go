package services

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDataDir           = "data_dir"
	KeyUploadDir         = "storage.upload_dir"
	KeyEmbedProvider     = "embedding.provider"
	KeyEmbedModel        = "embedding.model"
	KeyEmbedBaseURL      = "embedding.base_url"
	KeyEmbedAPIKey       = "embedding.api_key"
	KeyEmbedDimensions   = "embedding.dimensions"
	KeyLLMProvider       = "llm.provider"
	KeyLLMModel          = "llm.model"
	KeyLLMBaseURL        = "llm.base_url"
	KeyLLMAPIKey         = "llm.api_key"
	KeyChunkSize         = "chunking.size"
	KeyChunkOverlap      = "chunking.overlap"
	KeyTopK              = "query.top_k"
	KeyGenerationTimeout = "query.generation_timeout"
	KeyTombstoneOnDelete = "index.tombstone_on_delete"
)

// Environment variables consulted for API keys that are not stored.
//
//nolint:gosec // G101: environment variable names, not credentials.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindDuration
)

// settingKinds lists every known key and how its value is parsed.
var settingKinds = map[string]valueKind{
	KeyDataDir:           kindString,
	KeyUploadDir:         kindString,
	KeyEmbedProvider:     kindString,
	KeyEmbedModel:        kindString,
	KeyEmbedBaseURL:      kindString,
	KeyEmbedAPIKey:       kindString,
	KeyEmbedDimensions:   kindInt,
	KeyLLMProvider:       kindString,
	KeyLLMModel:          kindString,
	KeyLLMBaseURL:        kindString,
	KeyLLMAPIKey:         kindString,
	KeyChunkSize:         kindInt,
	KeyChunkOverlap:      kindInt,
	KeyTopK:              kindInt,
	KeyGenerationTimeout: kindDuration,
	KeyTombstoneOnDelete: kindBool,
}

// SettingsService manages application settings stored in a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
	homeDir     func() (string, error)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
		homeDir:     os.UserHomeDir,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	dataDir := s.configStore.GetString(KeyDataDir)
	if dataDir == "" {
		home, err := s.homeDir()
		if err != nil {
			return settings, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "data")
	}
	settings.Storage.DataDir = dataDir
	settings.Storage.UploadDir = s.getString(KeyUploadDir, filepath.Join(dataDir, "uploads"))

	settings.Embedding.Provider = s.getProvider(KeyEmbedProvider, settings.Embedding.Provider, domain.AllEmbeddingProviders())
	settings.Embedding.Model = s.getString(KeyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.Embedding.BaseURL = s.configStore.GetString(KeyEmbedBaseURL)
	settings.Embedding.APIKey = s.apiKey(KeyEmbedAPIKey, settings.Embedding.Provider)
	settings.Embedding.Dimensions = s.getInt(KeyEmbedDimensions, 0)

	settings.LLM.Provider = s.getProvider(KeyLLMProvider, settings.LLM.Provider, domain.AllLLMProviders())
	settings.LLM.Model = s.getString(KeyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])
	settings.LLM.BaseURL = s.configStore.GetString(KeyLLMBaseURL)
	settings.LLM.APIKey = s.apiKey(KeyLLMAPIKey, settings.LLM.Provider)

	settings.Chunking.Size = s.getInt(KeyChunkSize, settings.Chunking.Size)
	settings.Chunking.Overlap = s.getInt(KeyChunkOverlap, settings.Chunking.Overlap)
	settings.Query.TopK = s.getInt(KeyTopK, settings.Query.TopK)
	settings.Query.GenerationTimeout = s.getDuration(KeyGenerationTimeout, settings.Query.GenerationTimeout)
	settings.Index.TombstoneOnDelete = s.configStore.GetBool(KeyTombstoneOnDelete)

	return settings, nil
}

// Value returns the effective value of a setting as text. API keys are masked.
func (s *SettingsService) Value(key string) (string, error) {
	if _, ok := settingKinds[key]; !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case KeyDataDir:
		return settings.Storage.DataDir, nil
	case KeyUploadDir:
		return settings.Storage.UploadDir, nil
	case KeyEmbedProvider:
		return settings.Embedding.Provider.String(), nil
	case KeyEmbedModel:
		return settings.Embedding.Model, nil
	case KeyEmbedBaseURL:
		return settings.Embedding.BaseURL, nil
	case KeyEmbedAPIKey:
		return maskSecret(settings.Embedding.APIKey), nil
	case KeyEmbedDimensions:
		return strconv.Itoa(settings.Embedding.Dimensions), nil
	case KeyLLMProvider:
		return settings.LLM.Provider.String(), nil
	case KeyLLMModel:
		return settings.LLM.Model, nil
	case KeyLLMBaseURL:
		return settings.LLM.BaseURL, nil
	case KeyLLMAPIKey:
		return maskSecret(settings.LLM.APIKey), nil
	case KeyChunkSize:
		return strconv.Itoa(settings.Chunking.Size), nil
	case KeyChunkOverlap:
		return strconv.Itoa(settings.Chunking.Overlap), nil
	case KeyTopK:
		return strconv.Itoa(settings.Query.TopK), nil
	case KeyGenerationTimeout:
		return settings.Query.GenerationTimeout.String(), nil
	default: // KeyTombstoneOnDelete
		return strconv.FormatBool(settings.Index.TombstoneOnDelete), nil
	}
}

// Set parses a textual value for key, validates it against the current
// settings and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %s must be a positive duration such as 60s", domain.ErrInvalidInput, key)
		}
		parsed = d.String()
	default:
		parsed = value
	}

	if err := s.validate(key, parsed); err != nil {
		return err
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) validate(key string, value any) error {
	current, err := s.Get()
	if err != nil {
		return err
	}

	switch key {
	case KeyEmbedProvider:
		p := domain.AIProvider(value.(string))
		if !slices.Contains(domain.AllEmbeddingProviders(), p) {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, p)
		}
	case KeyLLMProvider:
		p := domain.AIProvider(value.(string))
		if !slices.Contains(domain.AllLLMProviders(), p) {
			return fmt.Errorf("%w: provider %s does not generate answers", domain.ErrInvalidInput, p)
		}
	case KeyEmbedDimensions:
		if value.(int) < 0 {
			return fmt.Errorf("%w: %s cannot be negative", domain.ErrInvalidInput, key)
		}
	case KeyChunkSize:
		if n := value.(int); n <= 0 || current.Chunking.Overlap >= n {
			return fmt.Errorf("%w: %s must be positive and greater than chunking.overlap (%d)",
				domain.ErrInvalidInput, key, current.Chunking.Overlap)
		}
	case KeyChunkOverlap:
		if n := value.(int); n < 0 || n >= current.Chunking.Size {
			return fmt.Errorf("%w: %s must be in [0, chunking.size) with chunking.size = %d",
				domain.ErrInvalidInput, key, current.Chunking.Size)
		}
	case KeyTopK:
		if value.(int) <= 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// Keys returns every known setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	return s.configStore.GetInt(key)
}

// getDuration accepts "90s" style strings or a bare number of seconds.
func (s *SettingsService) getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return fallback
	}
	switch v := raw.(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	case int, int64, float64:
		if n := s.configStore.GetInt(key); n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

func (s *SettingsService) getProvider(key string, fallback domain.AIProvider, allowed []domain.AIProvider) domain.AIProvider {
	p := domain.AIProvider(s.configStore.GetString(key))
	if slices.Contains(allowed, p) {
		return p
	}
	return fallback
}

// apiKey prefers the stored key, then the provider's environment variable.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicAPIKey)
	default:
		return ""
	}
}

func maskSecret(secret string) string {
	if len(secret) <= 4 {
		if secret == "" {
			return ""
		}
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
