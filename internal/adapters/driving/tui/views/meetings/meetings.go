// Package meetings provides the meetings browser view for the TUI.
package meetings

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/components/list"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/messages"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/styles"
	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// menuOption is one entry in the open-document menu.
type menuOption struct {
	label      string
	documentID string
}

// View is the meetings browser: the catalogued meetings with their
// extraction state, opening extracted documents on selection.
type View struct {
	styles         *styles.Styles
	meetingService driving.MeetingService
	list           *list.MeetingList
	ctx            context.Context

	loading      bool
	err          error
	showingMenu  bool
	menuOptions  []menuOption
	menuSelected int

	width  int
	height int
	ready  bool
}

// NewView creates a new meetings browser view.
func NewView(s *styles.Styles, meetingService driving.MeetingService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:         s,
		meetingService: meetingService,
		list:           list.NewMeetingList(s),
		ctx:            context.Background(),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view and loads the meetings overview.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	return v.loadMeetings()
}

// loadMeetings returns a command that loads the catalog overview.
func (v *View) loadMeetings() tea.Cmd {
	return func() tea.Msg {
		if v.meetingService == nil {
			return messages.MeetingsLoaded{Err: fmt.Errorf("meeting service not available")}
		}

		rows, err := v.meetingService.Overview(v.ctx)
		return messages.MeetingsLoaded{Rows: rows, Err: err}
	}
}

// Update handles messages for the meetings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.showingMenu {
			return v.handleMenuKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.MeetingsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.err = nil
			v.list.SetRows(msg.Rows)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.list.MoveUp()
	case "down", "j":
		v.list.MoveDown()
	case "enter":
		v.openMenu()
	case "r":
		v.loading = true
		return v, v.loadMeetings()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	}

	return v, nil
}

// openMenu builds the open-document menu for the selected meeting.
// Only extracted documents are offered.
func (v *View) openMenu() {
	row := v.list.SelectedRow()
	if row == nil {
		return
	}

	clip := meetingClipID(row.Meeting)
	options := make([]menuOption, 0, 3)
	if row.HasAgenda && clip != "" {
		options = append(options, menuOption{
			label:      "View Agenda",
			documentID: domain.DocumentID(domain.DocumentTypeAgenda, clip),
		})
	}
	if row.HasMinutes && clip != "" {
		options = append(options, menuOption{
			label:      "View Minutes",
			documentID: domain.DocumentID(domain.DocumentTypeMinutes, clip),
		})
	}
	if len(options) == 0 {
		return
	}
	options = append(options, menuOption{label: "Cancel"})

	v.menuOptions = options
	v.menuSelected = 0
	v.showingMenu = true
}

// handleMenuKeyMsg handles key presses in menu mode.
func (v *View) handleMenuKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.menuSelected > 0 {
			v.menuSelected--
		}
	case "down", "j":
		if v.menuSelected < len(v.menuOptions)-1 {
			v.menuSelected++
		}
	case "enter":
		opt := v.menuOptions[v.menuSelected]
		v.showingMenu = false
		if opt.documentID == "" {
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.DocumentRequested{DocumentID: opt.documentID}
		}
	case "esc":
		v.showingMenu = false
	}

	return v, nil
}

// meetingClipID resolves the meeting's clip identifier from its
// document URLs.
func meetingClipID(m domain.Meeting) string {
	for _, u := range []string{m.AgendaURL, m.MinutesURL} {
		if u == "" {
			continue
		}
		if clip := domain.ClipIDFromURL(u); clip != "unknown" {
			return clip
		}
	}
	return ""
}

// View renders the meetings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Meetings"))
	b.WriteString(v.styles.Muted.Render("  Discovered meetings and extraction state"))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading meetings..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.showingMenu {
		b.WriteString(v.renderMenu())
		return b.String()
	}

	b.WriteString(v.list.View())
	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderMenu renders the open-document menu overlay.
func (v *View) renderMenu() string {
	var b strings.Builder

	if row := v.list.SelectedRow(); row != nil {
		label := row.Meeting.ID
		if !row.Meeting.Date.IsZero() {
			label = row.Meeting.Date.Format("January 2, 2006")
		}
		b.WriteString(v.styles.Subtitle.Render("Open document for: " + label))
		b.WriteString("\n\n")
	}

	for i, opt := range v.menuOptions {
		indicator := "  "
		if i == v.menuSelected {
			indicator = "> "
			b.WriteString(v.styles.Selected.Render(indicator + opt.label))
		} else {
			b.WriteString(v.styles.Normal.Render(indicator + opt.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] open  [r] reload  [tab] chat  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-6)
}

// Rows returns the loaded overview rows.
func (v *View) Rows() []driving.MeetingOverview {
	return v.list.Rows()
}

// SelectedIndex returns the currently selected row index.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// IsShowingMenu returns true if the open-document menu is visible.
func (v *View) IsShowingMenu() bool {
	return v.showingMenu
}

// Loading returns whether the overview is being loaded.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
