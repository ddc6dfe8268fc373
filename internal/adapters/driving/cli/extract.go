package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

var (
	extractLimit        int
	extractForce        bool
	extractSkipExisting bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract agenda and minutes text",
	Long: `Downloads and extracts the text of every discovered meeting document:
HTML agendas are parsed into their section structure, minutes PDFs
into per-page text. Each document becomes a JSON artifact under the
data directory.

Documents that already have artifacts are skipped unless --force is
given. Failures never abort the batch; they are collected into the
extraction error report.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "process at most N meetings (0 = all)")
	extractCmd.Flags().BoolVar(&extractSkipExisting, "skip-existing", true, "skip documents already extracted")
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "re-extract documents that already have artifacts")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	opts := domain.ExtractOptions{
		Limit: extractLimit,
		Force: extractForce || !extractSkipExisting,
	}

	report, err := extractionService.Run(cmd.Context(), opts)
	if err != nil {
		if errors.Is(err, domain.ErrNoDocuments) {
			return errors.New("no discovery results found; run 'gavel discover' first")
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	cmd.Printf("Extracted %d documents (%d skipped)\n", report.Extracted, report.Skipped)

	if report.HasErrors() {
		cmd.Printf("\n%d documents failed:\n", len(report.AgendaErrors)+len(report.MinutesErrors))
		for _, e := range report.AgendaErrors {
			cmd.Printf("  agenda  %s: %s\n", e.MeetingID, e.Message)
		}
		for _, e := range report.MinutesErrors {
			cmd.Printf("  minutes %s: %s\n", e.MeetingID, e.Message)
		}
		cmd.Println("\nDetails written to the extraction error report.")
	}

	if report.Extracted > 0 {
		cmd.Println("Next: run 'gavel index' to build the vector index.")
	}
	return nil
}
