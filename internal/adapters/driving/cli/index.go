package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

var (
	indexClear    bool
	indexQuery    string
	indexNResults int
	indexStats    bool
	indexWatch    bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and inspect the vector index",
	Long: `Chunks every extracted document and embeds the chunks into the
vector index. Agendas with a parsed structure are chunked by section,
everything else by paragraphs.

Inspection flags skip the build:
  --stats          print the index record count and type breakdown
  --query TEXT     run a retrieval-only test query
  --watch          rebuild whenever document artifacts change`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexClear, "clear", false, "drop and recreate the collection first")
	indexCmd.Flags().StringVar(&indexQuery, "query", "", "run a retrieval-only test query instead of building")
	indexCmd.Flags().IntVar(&indexNResults, "n-results", 5, "results to return for --query")
	indexCmd.Flags().BoolVar(&indexStats, "stats", false, "print index statistics instead of building")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "rebuild on document artifact changes")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	switch {
	case indexStats:
		return runIndexStats(cmd)
	case indexQuery != "":
		return runIndexQuery(cmd)
	default:
		if err := runIndexBuild(cmd); err != nil {
			return err
		}
		if indexWatch {
			cmd.Println("Watching for document changes (ctrl+c to stop)...")
			return indexService.Watch(cmd.Context())
		}
		return nil
	}
}

func runIndexBuild(cmd *cobra.Command) error {
	report, err := indexService.Build(cmd.Context(), domain.BuildOptions{Clear: indexClear})
	if err != nil {
		if errors.Is(err, domain.ErrNoDocuments) {
			return errors.New("no extracted documents found; run 'gavel extract' first")
		}
		return fmt.Errorf("index build failed: %w", err)
	}

	cmd.Printf("Indexed %d documents into %d chunks (%d agenda, %d minutes)\n",
		report.Documents, report.TotalChunks, report.AgendaChunks, report.MinutesChunks)

	if len(report.Errors) > 0 {
		cmd.Printf("\n%d documents failed to chunk:\n", len(report.Errors))
		for _, e := range report.Errors {
			cmd.Printf("  %s\n", e)
		}
	}
	return nil
}

func runIndexStats(cmd *cobra.Command) error {
	stats, err := indexService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	cmd.Printf("Collection: %s\n", stats.Collection)
	cmd.Printf("Records:    %d\n", stats.TotalChunks)

	if len(stats.DocumentTypes) > 0 {
		cmd.Printf("\nBy document type (sample of %d):\n", stats.SampleSize)
		types := make([]string, 0, len(stats.DocumentTypes))
		for docType := range stats.DocumentTypes {
			types = append(types, docType)
		}
		sort.Strings(types)
		for _, docType := range types {
			cmd.Printf("  %-8s %d\n", docType, stats.DocumentTypes[docType])
		}
	}
	return nil
}

func runIndexQuery(cmd *cobra.Command) error {
	results, err := indexService.TestQuery(cmd.Context(), indexQuery, indexNResults)
	if err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	if len(results) == 0 {
		cmd.Println("No results.")
		return nil
	}

	cmd.Printf("Results for %q:\n\n", indexQuery)
	for i, r := range results {
		cmd.Printf("  [%d] %s (distance %.4f)\n", i+1, r.Chunk.ID, r.Distance)
		if r.Chunk.Section != "" {
			cmd.Printf("      Section: %s\n", r.Chunk.Section)
		}
		cmd.Printf("      %s\n\n", snippet(r.Chunk.Content, 160))
	}
	return nil
}

// snippet truncates content to a single display line.
func snippet(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
