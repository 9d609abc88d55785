package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range configCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"get", "set", "list", "check"}, names)
}

func TestConfigGetCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute("config", "get", "query.top_k")

	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestConfigGetCmd_UnknownKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("config", "get", "nope")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigSetCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute("config", "set", "query.top_k", "5")

	require.NoError(t, err)
	assert.Contains(t, out, "query.top_k = 5")
	assert.Equal(t, "5", ts.settings.values["query.top_k"])
}

func TestConfigSetCmd_Rejected(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.setErr = domain.ErrInvalidInput

	_, _, err := execute("config", "set", "query.top_k", "-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "failed to set query.top_k")
}

func TestConfigListCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute("config", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "embedding.provider")
	assert.Contains(t, out, "hash")
	assert.Contains(t, out, "(not set)")
	assert.Less(t, strings.Index(out, "embedding.provider"), strings.Index(out, "query.top_k"))
}

func TestConfigCheckCmd(t *testing.T) {
	tests := []struct {
		name     string
		embedErr error
		llmErr   error
		wantErr  bool
		want     []string
	}{
		{name: "both reachable", want: []string{"Embedding", "LLM", "OK"}},
		{name: "embedding down", embedErr: errors.New("connection refused"), wantErr: true,
			want: []string{"FAILED: connection refused"}},
		{name: "llm down", llmErr: errors.New("401 unauthorized"), wantErr: true,
			want: []string{"FAILED: 401 unauthorized"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cleanup := setupTestServices()
			defer cleanup()

			prevEmbed, prevLLM := validateEmbedding, validateLLM
			validateEmbedding = func(*domain.EmbeddingSettings) error { return tt.embedErr }
			validateLLM = func(*domain.LLMSettings) error { return tt.llmErr }
			defer func() { validateEmbedding, validateLLM = prevEmbed, prevLLM }()

			out, _, err := execute("config", "check")

			if tt.wantErr {
				assert.EqualError(t, err, "configuration check failed")
			} else {
				assert.NoError(t, err)
			}
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestConfigCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	for _, args := range [][]string{
		{"config", "get", "llm.provider"},
		{"config", "set", "llm.provider", "openai"},
		{"config", "list"},
		{"config", "check"},
	} {
		_, _, err := execute(args...)
		assert.EqualError(t, err, "settings service not configured", args)
	}
}
