package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/extractors"
	"github.com/custodia-labs/docqa/internal/logger"
)

// shutdownTimeout bounds how long queued ingestions may keep running
// after the command itself has finished.
const shutdownTimeout = 2 * time.Minute

// bootstrap opens the services a command needs. Tests replace it.
var bootstrap = openServices

// closers release what bootstrap opened. They run in reverse order.
var closers []func() error

func openServices(_ *cobra.Command, scope string) error {
	if scope == scopeNone {
		return nil
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settings := services.NewSettingsService(store)
	settingsService = settings
	if scope == scopeSettings {
		return nil
	}

	app, err := settings.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if dataDir != "" {
		app.Storage.DataDir = dataDir
		app.Storage.UploadDir = filepath.Join(dataDir, "uploads")
	}
	return openStack(app)
}

// openStack wires the storage, AI and pipeline services for app.
func openStack(app domain.AppSettings) error {
	logger.Section("Bootstrap")
	logger.Debug("data dir: %s", app.Storage.DataDir)
	logger.Debug("embedding: %s/%s, llm: %s/%s",
		app.Embedding.Provider, app.Embedding.Model, app.LLM.Provider, app.LLM.Model)

	db, err := sqlite.NewStore(app.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	closers = append(closers, db.Close)

	index := flat.New(filepath.Join(app.Storage.DataDir, "index"))
	closers = append(closers, index.Close)

	aiServices, err := ai.NewServices(app)
	if err != nil {
		return fmt.Errorf("create AI services: %w", err)
	}
	closers = append(closers, func() error {
		aiServices.Close()
		return nil
	})

	chunks, err := chunker.New(
		chunker.WithChunkSize(app.Chunking.Size),
		chunker.WithOverlap(app.Chunking.Overlap),
	)
	if err != nil {
		return fmt.Errorf("create chunker: %w", err)
	}

	prompts, err := file.NewPromptStore(promptDir())
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}

	extract := extractors.Default()

	ingestion := services.NewIngestionPipeline(
		db.DocumentStore(), db.JobStore(), extract, chunks, aiServices.Embedding, index,
	)
	closers = append(closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return ingestion.Shutdown(ctx)
	})

	ingestionService = ingestion
	queryService = services.NewQueryPipeline(
		aiServices.Embedding, index, aiServices.LLM, prompts, db.QueryLogStore(), app.Query,
	)
	documentService = services.NewDocumentService(
		db.DocumentStore(), db.DocumentHistoryStore(), extract, index, ingestion,
		services.DocumentServiceConfig{
			UploadDir:         app.Storage.UploadDir,
			TombstoneOnDelete: app.Index.TombstoneOnDelete,
		},
	)
	feedbackService = services.NewFeedbackService(db.FeedbackStore())
	return nil
}

// promptDir returns the prompt override directory, or "" for the default.
func promptDir() string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "prompts")
}

// closeServices runs and clears the closers, newest first.
func closeServices() error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	closers = nil
	return errors.Join(errs...)
}
