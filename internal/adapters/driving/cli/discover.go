package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scrape the records portal for meetings",
	Long: `Scrapes the board's archive listing and records every meeting with
its agenda and minutes viewer links. The result is written to the
meetings artifact and the local catalog; run it again any time to
pick up newly published meetings.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	if discoveryService == nil {
		return errors.New("discovery service not configured")
	}

	result, err := discoveryService.Discover(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	withDocs := 0
	for _, m := range result.Meetings {
		if m.HasDocuments() {
			withDocs++
		}
	}

	cmd.Printf("Discovered %d meetings (%d with documents)\n", len(result.Meetings), withDocs)
	if len(result.Meetings) > 0 && !result.Meetings[0].Date.IsZero() {
		cmd.Printf("Most recent: %s\n", result.Meetings[0].Date.Format("Jan 2, 2006"))
	}
	cmd.Println("Next: run 'gavel extract' to pull document text.")
	return nil
}
