package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHash, AIProviderExtractive} {
		assert.True(t, p.IsValid(), p)
		assert.NotEqual(t, unknownDescription, p.Description())
	}
	assert.False(t, AIProvider("cohere").IsValid())
	assert.Equal(t, unknownDescription, AIProvider("cohere").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		want     bool
	}{
		{"ollama", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"hash", EmbeddingSettings{Provider: AIProviderHash}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"anthropic has no embeddings", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}, false},
		{"empty", EmbeddingSettings{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderExtractive}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderHash}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 1000, s.Chunking.Size)
	assert.Equal(t, 150, s.Chunking.Overlap)
	assert.Equal(t, 3, s.Query.TopK)
	assert.Equal(t, 60*time.Second, s.Query.GenerationTimeout)
	assert.Equal(t, AIProviderOllama, s.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", s.Embedding.Model)
	assert.Equal(t, "mistral", s.LLM.Model)
	assert.False(t, s.Index.TombstoneOnDelete)
}

func TestDefaultModels_HaveKnownDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	for _, model := range DefaultEmbeddingModels() {
		_, ok := dims[model]
		assert.True(t, ok, model)
	}
}

func TestIngestJob_Duration(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	job := &IngestJob{StartedAt: start}
	assert.Zero(t, job.Duration())

	job.FinishedAt = start.Add(2 * time.Second)
	assert.Equal(t, 2*time.Second, job.Duration())
	assert.True(t, JobFailed.IsFinished())
	assert.False(t, JobRunning.IsFinished())
}
