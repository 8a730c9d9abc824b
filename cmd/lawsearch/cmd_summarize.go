package main

import (
	"context"
	"fmt"
	"io"

	"egovlaw-backend/models"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var summarizeRaw bool

// summarizeCmd asks the AI for a short summary of a law
var summarizeCmd = &cobra.Command{
	Use:   "summarize [lawId]",
	Short: "Summarize a law with the AI assistant",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().BoolVar(&summarizeRaw, "raw", false, "Print the summary without markdown rendering")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
	defer cancel()

	session := application.NewSession()
	state, err := session.Summarize(ctx, args[0])
	if err != nil {
		return err
	}
	return renderSummary(cmd.OutOrStdout(), state, summarizeRaw)
}

func renderSummary(w io.Writer, state models.SessionState, raw bool) error {
	fmt.Fprintln(w, headerStyle.Render("Summary of "+state.SummaryTarget))
	if raw {
		fmt.Fprintln(w, state.Summary)
		return nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(state.Summary)
	if err != nil {
		fmt.Fprintln(w, state.Summary)
		return nil
	}
	fmt.Fprint(w, out)
	return nil
}
