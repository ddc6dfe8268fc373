package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gavel-labs/gavel/internal/adapters/driving/tui"
	"github.com/gavel-labs/gavel/internal/core/domain"
)

var (
	chatOneShot string
	chatJSON    bool
	chatTopK    int
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about the indexed board records",
	Long: `Opens an interactive chat over the indexed meeting documents.
Answers carry citations back to the agenda and minutes chunks they
were generated from.

Controls:
  enter   - ask the typed question
  tab     - switch between chat and meetings browser
  ctrl+l  - clear history and start a new session
  ctrl+c  - quit

With --one-shot the question is answered once on stdout and the
program exits, which suits scripting; --json switches that output to
a machine-readable form.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatOneShot, "one-shot", "", "answer a single question and exit")
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "print the --one-shot answer as JSON")
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "chunks retrieved per answer (0 uses the configured default)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured; run 'gavel settings wizard' first")
	}

	if chatOneShot != "" {
		return runChatOneShot(cmd)
	}
	return runChatTUI(cmd)
}

func runChatOneShot(cmd *cobra.Command) error {
	answer, err := queryService.Query(cmd.Context(), chatOneShot, chatTopK, true)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if chatJSON {
		return outputAnswerJSON(cmd, chatOneShot, answer)
	}
	return outputAnswerText(cmd, answer)
}

// oneShotAnswer is the JSON shape for a --one-shot --json response.
type oneShotAnswer struct {
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Sources  []oneShotSource `json:"sources,omitempty"`
	Usage    *oneShotUsage   `json:"usage,omitempty"`
}

type oneShotSource struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentType string  `json:"document_type"`
	Section      string  `json:"section,omitempty"`
	Relevance    float64 `json:"relevance"`
}

type oneShotUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

func outputAnswerJSON(cmd *cobra.Command, question string, answer *domain.Answer) error {
	out := oneShotAnswer{
		Question: question,
		Answer:   answer.Text,
	}
	for _, s := range answer.Sources {
		out.Sources = append(out.Sources, oneShotSource{
			ChunkID:      s.ChunkID,
			DocumentType: string(s.DocumentType),
			Section:      s.Section,
			Relevance:    s.Relevance(),
		})
	}
	if answer.Usage != nil {
		out.Usage = &oneShotUsage{
			InputTokens:  answer.Usage.InputTokens,
			OutputTokens: answer.Usage.OutputTokens,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println("\nSources:")
		for i, s := range answer.Sources {
			line := fmt.Sprintf("  %d. [%s]", i+1, strings.ToUpper(string(s.DocumentType)))
			if s.Section != "" {
				line += " " + s.Section
			}
			line += fmt.Sprintf(" (relevance %.2f%%)", s.Relevance()*100)
			cmd.Println(line)
		}
	}

	if answer.Usage != nil {
		cmd.Printf("\nTokens: %d in / %d out\n", answer.Usage.InputTokens, answer.Usage.OutputTokens)
	}
	return nil
}

func runChatTUI(cmd *cobra.Command) error {
	// Panic recovery keeps a stack trace visible after the alternate
	// screen is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := tui.NewPorts(queryService, meetingService, historyService)

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("starting chat: %w", err)
	}

	app.WithContext(cmd.Context()).WithTopK(chatTopK)

	if err := app.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
