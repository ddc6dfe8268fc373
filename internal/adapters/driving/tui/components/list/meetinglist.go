// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/styles"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// MeetingList displays catalogued meetings in a navigable list.
type MeetingList struct {
	rows     []driving.MeetingOverview
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewMeetingList creates a new meeting list component.
func NewMeetingList(s *styles.Styles) *MeetingList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &MeetingList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the meeting list.
func (m *MeetingList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (m *MeetingList) Update(msg tea.Msg) (*MeetingList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			m.MoveUp()
		case tea.KeyDown:
			m.MoveDown()
		default:
			// Handle other keys
		}
		switch msg.String() {
		case "k":
			m.MoveUp()
		case "j":
			m.MoveDown()
		}
	}
	return m, nil
}

// View renders the meeting list.
func (m *MeetingList) View() string {
	if len(m.rows) == 0 {
		return m.styles.Muted.Render("No meetings catalogued. Run 'gavel discover' first.")
	}

	lines := make([]string, 0, len(m.rows)+2)

	header := m.styles.Subtitle.Render(fmt.Sprintf("Meetings (%d)", len(m.rows)))
	lines = append(lines, header, "")

	visibleCount := m.height - 3
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if m.selected >= visibleCount {
		start = m.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(i, &m.rows[i]))
	}

	if len(m.rows) > visibleCount {
		lines = append(lines, "", m.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", start+1, end, len(m.rows))))
	}

	return strings.Join(lines, "\n")
}

// renderRow formats one meeting with its extraction state.
func (m *MeetingList) renderRow(index int, row *driving.MeetingOverview) string {
	indicator := "  "
	if index == m.selected {
		indicator = "> "
	}

	date := "unknown   "
	if !row.Meeting.Date.IsZero() {
		date = row.Meeting.Date.Format("2006-01-02")
	}

	state, stateStyle := m.extractionState(row)

	title := row.Meeting.Title
	maxTitleLen := m.width - 32
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	if index == m.selected {
		return m.styles.Selected.Render(fmt.Sprintf("%s%s  %-14s  %s", indicator, date, state, title))
	}

	return m.styles.Normal.Render(indicator+date+"  ") +
		stateStyle.Render(fmt.Sprintf("%-14s", state)) +
		m.styles.Muted.Render("  "+title)
}

// extractionState labels what has been extracted for a meeting.
func (m *MeetingList) extractionState(row *driving.MeetingOverview) (string, lipgloss.Style) {
	switch {
	case row.HasAgenda && row.HasMinutes:
		return "agenda+minutes", m.styles.Success
	case row.HasAgenda:
		return "agenda", m.styles.Normal
	case row.HasMinutes:
		return "minutes", m.styles.Normal
	case row.Meeting.HasDocuments():
		return "not extracted", m.styles.Warning
	default:
		return "no documents", m.styles.Muted
	}
}

// SetRows updates the meeting list.
func (m *MeetingList) SetRows(rows []driving.MeetingOverview) {
	m.rows = rows
	m.selected = 0
}

// Rows returns the current rows.
func (m *MeetingList) Rows() []driving.MeetingOverview {
	return m.rows
}

// Selected returns the index of the selected meeting.
func (m *MeetingList) Selected() int {
	return m.selected
}

// SetSelected sets the selected index.
func (m *MeetingList) SetSelected(index int) {
	if index >= 0 && index < len(m.rows) {
		m.selected = index
	}
}

// SelectedRow returns the currently selected meeting, or nil if none.
func (m *MeetingList) SelectedRow() *driving.MeetingOverview {
	if len(m.rows) == 0 || m.selected < 0 || m.selected >= len(m.rows) {
		return nil
	}
	return &m.rows[m.selected]
}

// MoveUp moves selection up.
func (m *MeetingList) MoveUp() {
	if m.selected > 0 {
		m.selected--
	}
}

// MoveDown moves selection down.
func (m *MeetingList) MoveDown() {
	if m.selected < len(m.rows)-1 {
		m.selected++
	}
}

// SetDimensions sets the component dimensions.
func (m *MeetingList) SetDimensions(width, height int) {
	m.width = width
	m.height = height
}

// Width returns the current width.
func (m *MeetingList) Width() int {
	return m.width
}

// Height returns the current height.
func (m *MeetingList) Height() int {
	return m.height
}

// Count returns the number of meetings.
func (m *MeetingList) Count() int {
	return len(m.rows)
}

// IsEmpty returns whether the list is empty.
func (m *MeetingList) IsEmpty() bool {
	return len(m.rows) == 0
}
