package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/equitas/internal/app"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <ticker>",
	Short: "Print the research prompt for a ticker",
	Long:  `Loads fundamentals and the live quote for a ticker and prints the composed prompt without calling the language model.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPrompt,
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ticker := strings.TrimSpace(args[0])

	pipeline, err := app.NewPipeline(config, logger)
	if err != nil {
		return err
	}

	fundamentals, err := pipeline.FundamentalsLoader.Load(cmd.Context(), ticker)
	if err != nil {
		return err
	}

	quote := pipeline.QuoteFetcher.Fetch(cmd.Context(), ticker)

	fmt.Fprintln(cmd.OutOrStdout(), pipeline.PromptComposer.Compose(fundamentals, quote))
	return nil
}
