package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	historyUser   int64
	historyAll    bool
	historyLimit  int
	historyOffset int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past questions, newest first",
	Long: `Lists logged questions with their answers and sources, newest first.
Each entry starts with its query ID, which 'docqa feedback' takes.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int64VarP(&historyUser, "user", "u", 1, "user whose questions to show")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "show every user's questions")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of entries")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "number of entries to skip")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	var (
		logs []domain.QueryLog
		err  error
	)
	if historyAll {
		logs, err = queryService.AllLogs(cmd.Context(), historyOffset, historyLimit)
	} else {
		logs, err = queryService.History(cmd.Context(), historyUser, historyOffset, historyLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(logs) == 0 {
		cmd.Println("No queries found.")
		return nil
	}

	for i := range logs {
		entry := &logs[i]
		cmd.Printf("#%d [%s] user %d\n", entry.ID, entry.Timestamp.Format(timeLayout), entry.UserID)
		cmd.Printf("  Q: %s\n", entry.QueryText)
		cmd.Printf("  A: %s\n", entry.ResponseText)
		cmd.Printf("  Sources: %s\n\n", entry.SourceReferences)
	}
	return nil
}
