package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askUser int64
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed documents",
	Long: `Retrieves the chunks most similar to the question, asks the language model
to answer from them, and prints the answer with the files it came from.

Every question is recorded in the query log, including failed ones.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var (
	answerStyle  = lipgloss.NewStyle().Bold(true)
	sourcesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func init() {
	askCmd.Flags().Int64VarP(&askUser, "user", "u", 1, "user ID recorded in the query log")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	answer, err := queryService.Ask(cmd.Context(), askUser, args[0])
	if err != nil {
		return err
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswer(cmd, answer, styledOutput(cmd))
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, answer domain.Answer, styled bool) {
	text := answer.Text
	sources := "Sources: " + answer.Sources
	if styled {
		if answer.Ready {
			text = answerStyle.Render(text)
		} else {
			text = warningStyle.Render(text)
		}
		sources = sourcesStyle.Render(sources)
	}
	cmd.Println(text)
	cmd.Println()
	cmd.Println(sources)
}

// styledOutput reports whether the command writes to a terminal.
func styledOutput(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
