package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "extractive"))
	require.NoError(t, store.Set("query.top_k", 5))
	require.NoError(t, store.Set("index.tombstone_on_delete", true))

	assert.Equal(t, "extractive", store.GetString("llm.provider"))
	assert.Equal(t, 5, store.GetInt("query.top_k"))
	assert.True(t, store.GetBool("index.tombstone_on_delete"))

	// Wrong types and missing keys return zero values.
	assert.Equal(t, "", store.GetString("query.top_k"))
	assert.Equal(t, 0, store.GetInt("llm.provider"))
	assert.False(t, store.GetBool("missing"))
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsAsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("data_dir", "/var/docqa"))
	require.NoError(t, store.Set("embedding.provider", "hash"))
	require.NoError(t, store.Set("embedding.dimensions", 384))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[embedding]")
	assert.Regexp(t, `provider = ['"]hash['"]`, string(raw))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "/var/docqa", reloaded.GetString("data_dir"))
	assert.Equal(t, "hash", reloaded.GetString("embedding.provider"))
	// TOML integers come back as int64.
	assert.Equal(t, 384, reloaded.GetInt("embedding.dimensions"))
	assert.Equal(t, []string{"data_dir", "embedding.dimensions", "embedding.provider"}, reloaded.Keys())
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[llm]
provider = "ollama"
model = "mistral"

[chunking]
size = 500
overlap = 50
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "mistral", store.GetString("llm.model"))
	assert.Equal(t, 500, store.GetInt("chunking.size"))
	assert.Equal(t, 50, store.GetInt("chunking.overlap"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("query.top_k", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("query.top_k")
		}()
	}
	wg.Wait()

	_, ok := store.Get("query.top_k")
	assert.True(t, ok)
}

func TestUnflattenMap(t *testing.T) {
	got := unflattenMap(map[string]any{
		"a":     1,
		"a.b":   2,
		"c.d.e": "x",
		"c.f":   true,
	})

	assert.Equal(t, map[string]any{
		"a": 1,
		"c": map[string]any{
			"d": map[string]any{"e": "x"},
			"f": true,
		},
	}, got)
}

func TestFlattenMap(t *testing.T) {
	got := flattenMap(map[string]any{
		"llm": map[string]any{"provider": "openai"},
		"top": 1,
	}, "")

	assert.Equal(t, map[string]any{"llm.provider": "openai", "top": 1}, got)
}
