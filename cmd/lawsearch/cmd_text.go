package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// textCmd prints the extracted statute text
var textCmd = &cobra.Command{
	Use:   "text [lawId]",
	Short: "Print the extracted text of a law",
	Args:  cobra.ExactArgs(1),
	RunE:  runText,
}

func runText(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	text, err := application.LawData.FetchText(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch statute text: %w", err)
	}
	out := cmd.OutOrStdout()
	if text.SourceWasFallback {
		fmt.Fprintln(out, mutedStyle.Render("(structured text unavailable, showing raw full text)"))
	}
	fmt.Fprintln(out, text.Text)
	return nil
}
