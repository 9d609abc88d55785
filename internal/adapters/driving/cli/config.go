package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change settings",
	Long: `Settings live in ~/.docqa/config.toml. API keys may also come from the
OPENAI_API_KEY and ANTHROPIC_API_KEY environment variables or a .env file.

Examples:
  docqa config list
  docqa config set llm.provider openai
  docqa config set query.generation_timeout 90s
  docqa config check`,
	Annotations: map[string]string{annotationScope: scopeSettings},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Validate and store a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its effective value",
	RunE:  runConfigList,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the embedding and LLM providers are reachable",
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	value, err := settingsService.Value(args[0])
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	value, err := settingsService.Value(args[0])
	if err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", args[0], value)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		value, err := settingsService.Value(key)
		if err != nil {
			return err
		}
		if value == "" {
			value = "(not set)"
		}
		cmd.Printf("%-28s %s\n", key, value)
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var failed int
	cmd.Printf("Embedding (%s, %s)... ", settings.Embedding.Provider.Description(), settings.Embedding.Model)
	if err := validateEmbedding(&settings.Embedding); err != nil {
		failed++
		cmd.Printf("FAILED: %v\n", err)
	} else {
		cmd.Println("OK")
	}

	cmd.Printf("LLM (%s, %s)... ", settings.LLM.Provider.Description(), settings.LLM.Model)
	if err := validateLLM(&settings.LLM); err != nil {
		failed++
		cmd.Printf("FAILED: %v\n", err)
	} else {
		cmd.Println("OK")
	}

	if failed > 0 {
		return errors.New("configuration check failed")
	}
	return nil
}

// Provider checks, replaced in tests.
var (
	validateEmbedding = ai.ValidateEmbeddingConfig
	validateLLM       = ai.ValidateLLMConfig
)
