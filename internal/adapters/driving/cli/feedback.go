package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	feedbackRating  int
	feedbackComment string
	feedbackUser    int64
	feedbackList    bool
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback [query-id]",
	Short: "Rate an answer from the query history",
	Long: `Records a rating from 1 to 5 for a logged answer, with an optional comment.
Query IDs are shown by 'docqa history'. Use --list to show the feedback a query
has received instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().IntVarP(&feedbackRating, "rating", "r", 0, "rating from 1 (useless) to 5 (exact)")
	feedbackCmd.Flags().StringVarP(&feedbackComment, "comment", "c", "", "optional comment")
	feedbackCmd.Flags().Int64VarP(&feedbackUser, "user", "u", 1, "user leaving the feedback")
	feedbackCmd.Flags().BoolVar(&feedbackList, "list", false, "list feedback for the query")
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	if feedbackService == nil {
		return errors.New("feedback service not configured")
	}

	queryID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || queryID <= 0 {
		return fmt.Errorf("invalid query ID %q", args[0])
	}

	if feedbackList {
		return listFeedback(cmd, queryID)
	}

	if feedbackRating == 0 {
		return fmt.Errorf("--rating is required (%d-%d)", domain.MinRating, domain.MaxRating)
	}

	fb := &domain.Feedback{
		QueryID: queryID,
		UserID:  feedbackUser,
		Rating:  feedbackRating,
		Comment: feedbackComment,
	}
	if err := feedbackService.Submit(cmd.Context(), fb); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	cmd.Printf("Feedback %d recorded for query %d (rating %d)\n", fb.ID, queryID, fb.Rating)
	return nil
}

func listFeedback(cmd *cobra.Command, queryID int64) error {
	entries, err := feedbackService.ForQuery(cmd.Context(), queryID)
	if err != nil {
		return fmt.Errorf("failed to read feedback: %w", err)
	}
	if len(entries) == 0 {
		cmd.Printf("No feedback for query %d\n", queryID)
		return nil
	}

	for i := range entries {
		fb := &entries[i]
		cmd.Printf("  [%s] user %d rated %d\n", fb.Timestamp.Format(timeLayout), fb.UserID, fb.Rating)
		if fb.Comment != "" {
			cmd.Printf("      %s\n", fb.Comment)
		}
	}
	return nil
}
