package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQA)

	require.NoError(t, err)
	assert.Equal(t, DefaultQAPrompt, prompt)
	assert.FileExists(t, filepath.Join(dir, "qa.txt"))
}

func TestPromptStore_DefaultFormatsContextThenQuestion(t *testing.T) {
	got := fmt.Sprintf(DefaultQAPrompt, "CTX", "Q?")

	assert.Less(t, strings.Index(got, "CTX"), strings.Index(got, "Q?"))
	assert.Contains(t, got, "Question: Q?")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Answer from:\n%s\nQuestion: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa.txt"), []byte(custom+"\n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQA)

	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_RejectsWrongPlaceholders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa.txt"), []byte("only %s"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQA)

	require.NoError(t, err)
	assert.Equal(t, DefaultQAPrompt, prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.Error(t, err)
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptQA)
	require.NoError(t, err)

	updated := "C: %s Q: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa.txt"), []byte(updated), 0600))

	cached, err := store.Load(driven.PromptQA)
	require.NoError(t, err)
	assert.Equal(t, DefaultQAPrompt, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptQA)
	require.NoError(t, err)
	assert.Equal(t, updated, fresh)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := "mine %s %s"
	path := filepath.Join(dir, "qa.txt")
	require.NoError(t, os.WriteFile(path, []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, err = store.Load(driven.PromptQA)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptQA)
			assert.NoError(t, err)
			assert.Equal(t, DefaultQAPrompt, prompt)
		}()
	}
	wg.Wait()
}
