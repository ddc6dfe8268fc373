package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/messages"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/styles"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/views/chat"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/views/document"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/views/meetings"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// chatView is the question/answer view.
	chatView *chat.View

	// meetingsView is the meetings browser.
	meetingsView *meetings.View

	// documentView shows one extracted document.
	documentView *document.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		chatView:     chat.NewView(s, nil, ports.Query, ports.History),
		meetingsView: meetings.NewView(s, ports.Meetings),
		documentView: document.NewView(s, ports.Meetings),
		currentView:  messages.ViewChat, // Start in the chat
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.meetingsView.WithContext(ctx)
	a.documentView.WithContext(ctx)
	return a
}

// WithTopK overrides how many chunks retrieval feeds each answer.
func (a *App) WithTopK(k int) *App {
	a.chatView.SetTopK(k)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("gavel - board records chat"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.chatView.SetDimensions(msg.Width, msg.Height)
		a.meetingsView.SetDimensions(msg.Width, msg.Height)
		a.documentView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Tab toggles between chat and meetings
		if msg.Type == tea.KeyTab {
			return a.switchView()
		}

		switch a.currentView {
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
			a.err = a.chatView.Err()
			return a, cmd
		case messages.ViewMeetings:
			a.meetingsView, cmd = a.meetingsView.Update(msg)
			return a, cmd
		case messages.ViewDocument:
			a.documentView, cmd = a.documentView.Update(msg)
			return a, cmd
		}
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewMeetings {
			return a, a.meetingsView.Init()
		}
		return a, nil

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
		return a, cmd

	case messages.MeetingsLoaded:
		a.meetingsView, cmd = a.meetingsView.Update(msg)
		return a, cmd

	case messages.DocumentRequested:
		a.currentView = messages.ViewDocument
		return a, a.documentView.SetDocument(msg.DocumentID)

	case messages.DocumentLoaded:
		a.documentView, cmd = a.documentView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
		case messages.ViewMeetings:
			a.meetingsView, cmd = a.meetingsView.Update(msg)
		case messages.ViewDocument:
			a.documentView, cmd = a.documentView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (spinner ticks, blinks) to the active view
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewMeetings:
		a.meetingsView, cmd = a.meetingsView.Update(msg)
	case messages.ViewDocument:
		a.documentView, cmd = a.documentView.Update(msg)
	}

	return a, cmd
}

// switchView toggles between the chat and meetings views. The
// document view returns to the chat.
func (a *App) switchView() (tea.Model, tea.Cmd) {
	if a.currentView == messages.ViewChat {
		a.currentView = messages.ViewMeetings
		return a, a.meetingsView.Init()
	}
	a.currentView = messages.ViewChat
	return a, nil
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewMeetings:
		return a.meetingsView.View()
	case messages.ViewDocument:
		return a.documentView.View()
	default:
		return a.chatView.View()
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.meetingsView.SetDimensions(width, height)
	a.documentView.SetDimensions(width, height)
}
