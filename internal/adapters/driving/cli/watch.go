package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/watcher"
)

var (
	watchUser   int64
	watchSettle time.Duration
	watchNoScan bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload files dropped into a directory",
	Long: `Watches a directory and uploads every supported file that appears in it,
once the file has stopped changing. Files already present are uploaded first
unless --no-scan is given. Hidden files and subdirectories are ignored.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Int64VarP(&watchUser, "user", "u", 1, "owner user ID for uploaded files")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watcher.DefaultSettle, "quiet period before a changed file is uploaded")
	watchCmd.Flags().BoolVar(&watchNoScan, "no-scan", false, "skip files already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	inbox := watcher.NewInbox(args[0], documentService, watchUser,
		watcher.WithSettle(watchSettle),
		watcher.WithInitialScan(!watchNoScan),
	)

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return inbox.Run(cmd.Context(), func(r watcher.Result) {
		if r.Err != nil {
			cmd.PrintErrf("  %s: %v\n", r.Path, r.Err)
			return
		}
		cmd.Printf("  uploaded %s as document %d\n", r.Document.Filename, r.Document.ID)
	})
}
