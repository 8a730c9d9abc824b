package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"egovlaw-backend/models"
	"egovlaw-backend/service"

	"github.com/spf13/cobra"
)

const quitCommand = "/quit"

var askLawName string

// askCmd runs an interactive Q&A over one law
var askCmd = &cobra.Command{
	Use:   "ask [lawId]",
	Short: "Ask questions about a law",
	Long: `Loads the text of a law and answers questions about it until /quit
or end of input. Each answer lists the articles it cites with their text.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askLawName, "name", "", "Law name shown in the prompt")
}

func runAsk(cmd *cobra.Command, args []string) error {
	return askLoop(commandContext(cmd), cmd.InOrStdin(), cmd.OutOrStdout(), application.NewSession(), args[0], askLawName)
}

// askLoop opens the Q&A panel and reads one question per line
func askLoop(ctx context.Context, in io.Reader, out io.Writer, session *service.SessionService, lawID, lawName string) error {
	state, err := session.Ask(ctx, lawID, lawName)
	if err != nil {
		return err
	}
	if state.Phase != models.PhaseQAActive {
		return errors.New(state.Notice)
	}
	defer session.ClosePanel(ctx)

	title := lawID
	if lawName != "" {
		title = lawName + " (" + lawID + ")"
	}
	fmt.Fprintln(out, headerStyle.Render("Q&A: "+title))
	fmt.Fprintln(out, mutedStyle.Render("Type a question, "+quitCommand+" to exit."))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == quitCommand {
			return nil
		}

		state, err := session.SubmitQuestion(ctx, question)
		if err != nil {
			return err
		}
		if len(state.History) == 0 {
			continue
		}
		answer := state.History[len(state.History)-1].Content
		fmt.Fprintln(out, answer)
		renderCitations(out, session.Citations(answer))
	}
}

func renderCitations(w io.Writer, citations []service.Citation) {
	if len(citations) == 0 {
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Cited articles"))
	for _, c := range citations {
		if !c.Found {
			fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("%s: not found in the statute text", c.Article)))
			continue
		}
		fmt.Fprintf(w, "--- %s ---\n%s\n", c.Article, c.Text)
	}
	fmt.Fprintln(w, mutedStyle.Render(service.CitationDisclaimer))
}
