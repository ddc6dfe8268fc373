package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

var meetingsJSON bool

var meetingsCmd = &cobra.Command{
	Use:   "meetings",
	Short: "List discovered meetings and their extraction state",
	Args:  cobra.NoArgs,
	RunE:  runMeetings,
}

func init() {
	meetingsCmd.Flags().BoolVar(&meetingsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(meetingsCmd)
}

func runMeetings(cmd *cobra.Command, _ []string) error {
	if meetingService == nil {
		return errors.New("meeting service not configured")
	}

	rows, err := meetingService.Overview(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing meetings: %w", err)
	}

	if meetingsJSON {
		return outputMeetingsJSON(cmd, rows)
	}
	return outputMeetingsTable(cmd, rows)
}

// meetingRow is the JSON shape for one overview line.
type meetingRow struct {
	ID          string `json:"meeting_id"`
	Date        string `json:"date,omitempty"`
	Title       string `json:"title,omitempty"`
	AgendaURL   string `json:"agenda_url,omitempty"`
	MinutesURL  string `json:"minutes_url,omitempty"`
	HasAgenda   bool   `json:"has_agenda"`
	HasMinutes  bool   `json:"has_minutes"`
	ExtractedAt string `json:"extracted_at,omitempty"`
}

func outputMeetingsJSON(cmd *cobra.Command, rows []driving.MeetingOverview) error {
	out := make([]meetingRow, 0, len(rows))
	for _, r := range rows {
		row := meetingRow{
			ID:         r.Meeting.ID,
			Title:      r.Meeting.Title,
			AgendaURL:  r.Meeting.AgendaURL,
			MinutesURL: r.Meeting.MinutesURL,
			HasAgenda:  r.HasAgenda,
			HasMinutes: r.HasMinutes,
		}
		if !r.Meeting.Date.IsZero() {
			row.Date = r.Meeting.Date.Format("2006-01-02")
		}
		if !r.ExtractedAt.IsZero() {
			row.ExtractedAt = r.ExtractedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, row)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling meetings: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputMeetingsTable(cmd *cobra.Command, rows []driving.MeetingOverview) error {
	if len(rows) == 0 {
		cmd.Println("No meetings found. Run 'gavel discover' first.")
		return nil
	}

	cmd.Printf("%d meetings:\n\n", len(rows))
	for _, r := range rows {
		date := "unknown   "
		if !r.Meeting.Date.IsZero() {
			date = r.Meeting.Date.Format("2006-01-02")
		}

		cmd.Printf("  %s  %-14s %s\n", date, documentState(r), r.Meeting.ID)
	}
	return nil
}

// documentState renders what has been extracted for a meeting.
func documentState(r driving.MeetingOverview) string {
	switch {
	case r.HasAgenda && r.HasMinutes:
		return "agenda+minutes"
	case r.HasAgenda:
		return "agenda"
	case r.HasMinutes:
		return "minutes"
	case r.Meeting.HasDocuments():
		return "not extracted"
	default:
		return "no documents"
	}
}
