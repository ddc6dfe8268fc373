// Package cli implements the gavel command tree. Commands talk to
// the core through driving ports injected at startup; a command whose
// service is missing fails with a pointer at the settings wizard
// instead of panicking.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/gavel-labs/gavel/internal/core/ports/driving"
	"github.com/gavel-labs/gavel/internal/logger"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// verbose mirrors the persistent --verbose flag.
var verbose bool

// Services injected by the entry point before Execute runs.
var (
	discoveryService  driving.DiscoveryService
	extractionService driving.ExtractionService
	indexService      driving.IndexService
	queryService      driving.QueryService
	meetingService    driving.MeetingService
	settingsService   driving.SettingsService
	historyService    driving.HistoryService
)

var rootCmd = &cobra.Command{
	Use:   "gavel",
	Short: "Ask questions about municipal board meetings",
	Long: `Gavel turns a municipal board's public records portal into something
you can ask questions about.

The pipeline runs in three stages:
  discover - scrape the portal archive for meetings
  extract  - pull agenda and minutes text into local artifacts
  index    - chunk and embed the documents into the vector index

Once indexed, 'gavel chat' answers questions with citations back to
the meeting documents.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// Services bundles the driving ports the command tree depends on.
// Fields left nil disable the commands that need them.
type Services struct {
	Discovery  driving.DiscoveryService
	Extraction driving.ExtractionService
	Index      driving.IndexService
	Query      driving.QueryService
	Meetings   driving.MeetingService
	Settings   driving.SettingsService
	History    driving.HistoryService
}

// SetServices injects the service implementations used by commands.
func SetServices(s Services) {
	discoveryService = s.Discovery
	extractionService = s.Extraction
	indexService = s.Index
	queryService = s.Query
	meetingService = s.Meetings
	settingsService = s.Settings
	historyService = s.History
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
