// Package cli provides the docqa command line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	dataDir   string
	configDir string
)

// Services used by command handlers. They are set by bootstrap before a
// command runs, or directly by tests.
var (
	documentService  driving.DocumentService
	ingestionService driving.IngestionService
	queryService     driving.QueryService
	feedbackService  driving.FeedbackService
	settingsService  driving.SettingsService
)

// Command scopes, stored under annotationScope, decide how much of the
// application a command needs.
const (
	annotationScope = "docqa.scope"
	scopeNone       = "none"
	scopeSettings   = "settings"
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa indexes PDF, DOCX and text files and answers questions about them
using retrieval augmented generation.

Add documents with 'docqa add', then ask with 'docqa ask "your question"'.
Answers cite the files they were drawn from, and every question is logged.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for the database, index and uploads")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding config.toml and prompts (default ~/.docqa)")
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	return bootstrap(cmd, commandScope(cmd))
}

// commandScope returns the nearest scope annotation on cmd or its parents.
func commandScope(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if scope, ok := c.Annotations[annotationScope]; ok {
			return scope
		}
	}
	return ""
}

// Execute runs the root command and releases whatever bootstrap opened.
// An interrupt cancels the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closeErr := closeServices(); closeErr != nil {
		logger.Error("shutdown: %v", closeErr)
		if err == nil {
			err = closeErr
		}
	}
	return err
}
