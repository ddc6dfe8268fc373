package domain

import (
	"fmt"
	"time"
)

// Meeting represents one board meeting discovered in the records portal.
// It is produced by discovery and immutable once written.
type Meeting struct {
	// ID is the unique identifier, derived from the meeting date
	// (meeting_2024_01_05). Meetings without a parseable date fall
	// back to meeting_unknown_N.
	ID string

	// Date is the calendar date the meeting took place.
	Date time.Time

	// Title is the row label from the archive listing.
	Title string

	// AgendaURL points at the agenda viewer page, if the meeting has one.
	AgendaURL string

	// MinutesURL points at the minutes viewer page, if the meeting has one.
	MinutesURL string
}

// HasDocuments reports whether the meeting links to anything extractable.
func (m Meeting) HasDocuments() bool {
	return m.AgendaURL != "" || m.MinutesURL != ""
}

// MeetingID builds the canonical meeting identifier for a date.
func MeetingID(date time.Time) string {
	return fmt.Sprintf("meeting_%s", date.Format("2006_01_02"))
}

// UnknownMeetingID builds the fallback identifier for meetings whose
// archive row carried no parseable date.
func UnknownMeetingID(n int) string {
	return fmt.Sprintf("meeting_unknown_%d", n)
}

// DiscoveryResult is the output of one discovery run.
type DiscoveryResult struct {
	// ScrapedAt is when the archive page was fetched.
	ScrapedAt time.Time

	// SourceURL is the archive page that was scraped.
	SourceURL string

	// Meetings is the discovered list, deduplicated and sorted
	// newest-first.
	Meetings []Meeting
}
