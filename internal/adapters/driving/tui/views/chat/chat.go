// Package chat provides the question/answer chat view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/components/input"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/components/status"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/keymap"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/messages"
	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/styles"
	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// exampleQuestions is shown on an empty session to suggest what the
// records can answer.
var exampleQuestions = []string{
	"What travel requests were recently approved?",
	"Who are the current Board of Trustees members?",
	"What consent items were discussed?",
	"What is the Strong Workforce Program?",
	"What facilities projects are underway?",
}

// entry is one transcript turn with the citations shown alongside it.
type entry struct {
	message domain.ChatMessage
	sources []domain.Citation
}

// View is the chat view: transcript viewport, question input, spinner
// while an answer is generated, and a status bar with session token
// totals.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	viewport  viewport.Model
	spinner   spinner.Model
	statusbar *status.Bar

	queryService driving.QueryService
	history      driving.HistoryService
	ctx          context.Context

	session  *domain.ChatSession
	entries  []entry
	topK     int
	thinking bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view. The history service may be nil, in
// which case sessions are not persisted.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	queryService driving.QueryService,
	history driving.HistoryService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(s.Theme().Primary)

	vp := viewport.New(80, 14)

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		viewport:     vp,
		spinner:      sp,
		statusbar:    status.NewBar(s, km),
		queryService: queryService,
		history:      history,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetTopK overrides how many chunks retrieval feeds each answer.
// Zero keeps the configured default.
func (v *View) SetTopK(k int) {
	v.topK = k
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	v.refreshTranscript()
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if keymap.Matches(key, v.keymap.ClearHistory) {
		v.Reset()
		return v, nil
	}

	if msg.Type == tea.KeyEnter {
		return v.handleSubmit()
	}

	// Scrolling keys go to the transcript, everything else to the input
	switch key {
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleSubmit sends the typed question as the next turn.
func (v *View) handleSubmit() (*View, tea.Cmd) {
	if v.thinking {
		return v, nil
	}

	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return v, nil
	}

	v.entries = append(v.entries, entry{
		message: domain.ChatMessage{Role: domain.RoleUser, Content: question},
	})
	v.input.SetValue("")
	v.thinking = true
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.refreshTranscript()

	return v, tea.Batch(v.spinner.Tick, v.ask(question))
}

// ask returns a command that answers the latest turn and records both
// turns into the session history. History failures never fail the
// chat.
func (v *View) ask(question string) tea.Cmd {
	history := make([]domain.ChatMessage, 0, len(v.entries))
	for _, e := range v.entries {
		history = append(history, e.message)
	}
	sess := v.session
	k := v.topK

	return func() tea.Msg {
		if v.queryService == nil {
			return messages.AnswerReceived{Err: ErrNoQueryService}
		}

		// History persistence is best-effort: a failed write must not
		// break the conversation.
		if v.history != nil && sess == nil {
			sess, _ = v.history.StartSession(v.ctx, question)
		}
		if v.history != nil && sess != nil {
			_ = v.history.Record(v.ctx, sess.ID, domain.ChatMessage{Role: domain.RoleUser, Content: question}, nil)
		}

		answer, err := v.queryService.Chat(v.ctx, history, k)
		if err != nil {
			return messages.AnswerReceived{Session: sess, Err: err}
		}

		if v.history != nil && sess != nil {
			_ = v.history.Record(v.ctx, sess.ID, domain.ChatMessage{Role: domain.RoleAssistant, Content: answer.Text}, answer.Sources)
		}

		return messages.AnswerReceived{Answer: answer, Session: sess}
	}
}

// handleAnswer folds one completed turn into the transcript.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.thinking = false
	if msg.Session != nil {
		v.session = msg.Session
	}

	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	v.entries = append(v.entries, entry{
		message: domain.ChatMessage{Role: domain.RoleAssistant, Content: msg.Answer.Text},
		sources: msg.Answer.Sources,
	})
	if msg.Answer.Usage != nil {
		v.statusbar.AddUsage(*msg.Answer.Usage)
	}
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	v.refreshTranscript()
}

// refreshTranscript re-renders the viewport content and scrolls to the
// latest turn.
func (v *View) refreshTranscript() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

// renderTranscript renders the full conversation, or the example
// questions on a fresh session.
func (v *View) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(v.contentWidth())

	if len(v.entries) == 0 {
		return v.renderWelcome(wrap)
	}

	blocks := make([]string, 0, len(v.entries))
	for i := range v.entries {
		blocks = append(blocks, v.renderEntry(&v.entries[i], wrap))
	}
	return strings.Join(blocks, "\n\n")
}

// renderWelcome renders the empty-session prompt.
func (v *View) renderWelcome(wrap lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(wrap.Render("Ask a question about the board's meetings. Answers cite the agenda and minutes chunks they came from."))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Subtitle.Render("Example questions"))
	b.WriteString("\n")
	for _, q := range exampleQuestions {
		b.WriteString(v.styles.Muted.Render("  • " + q))
		b.WriteString("\n")
	}
	return b.String()
}

// renderEntry renders one turn, with its sources block for answers.
func (v *View) renderEntry(e *entry, wrap lipgloss.Style) string {
	var b strings.Builder

	switch e.message.Role {
	case domain.RoleUser:
		b.WriteString(v.styles.UserLabel.Render("You"))
	case domain.RoleAssistant:
		b.WriteString(v.styles.AssistantLabel.Render("Gavel"))
	default:
		b.WriteString(v.styles.Muted.Render(string(e.message.Role)))
	}
	b.WriteString("\n")
	b.WriteString(wrap.Render(e.message.Content))

	if len(e.sources) > 0 {
		b.WriteString("\n")
		b.WriteString(v.renderSources(e.sources))
	}

	return b.String()
}

// renderSources renders the citations block shown under an answer.
func (v *View) renderSources(sources []domain.Citation) string {
	var b strings.Builder
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Sources (%d)", len(sources))))
	for i, c := range sources {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("  " + formatSource(i+1, c)))
	}
	return b.String()
}

// formatSource renders one citation: rank, document type, meeting
// clip, section, and relevance.
func formatSource(rank int, c domain.Citation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. [%s]", rank, strings.ToUpper(string(c.DocumentType)))
	if clip := meetingClip(c); clip != "" {
		fmt.Fprintf(&b, " Meeting %s", clip)
	}
	if c.Section != "" {
		fmt.Fprintf(&b, " - %s", c.Section)
	}
	fmt.Fprintf(&b, " (relevance %.2f%%)", c.Relevance()*100)
	return b.String()
}

// meetingClip recovers the meeting clip identifier from a cited chunk
// ID of the form {type}_{clip}_chunk_NNN.
func meetingClip(c domain.Citation) string {
	head, _, ok := strings.Cut(c.ChunkID, "_chunk_")
	if !ok {
		return ""
	}
	prefix := string(c.DocumentType) + "_"
	if !strings.HasPrefix(head, prefix) {
		return ""
	}
	return head[len(prefix):]
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := v.styles.Title.Render("Gavel") +
		v.styles.Muted.Render("  Board meeting records chat")
	sections = append(sections, header, "")

	sections = append(sections, v.viewport.View())

	if v.thinking {
		sections = append(sections, v.spinner.View()+v.styles.Muted.Render(" thinking..."))
	} else if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	} else {
		sections = append(sections, "")
	}

	sections = append(sections, v.input.View())
	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// Header, spacer, spinner line, bordered input, status bar
	vpHeight := height - 9
	if vpHeight < 3 {
		vpHeight = 3
	}
	v.viewport.Width = width
	v.viewport.Height = vpHeight
	v.refreshTranscript()
}

// contentWidth is the wrap width for transcript text.
func (v *View) contentWidth() int {
	w := v.width - 2
	if w < 20 {
		w = 20
	}
	return w
}

// Reset clears the transcript and starts a fresh session.
func (v *View) Reset() {
	v.entries = nil
	v.session = nil
	v.thinking = false
	v.err = nil
	v.input.SetValue("")
	v.statusbar.Clear()
	v.refreshTranscript()
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Thinking returns whether an answer is being generated.
func (v *View) Thinking() bool {
	return v.thinking
}

// Messages returns the transcript as plain chat turns.
func (v *View) Messages() []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(v.entries))
	for _, e := range v.entries {
		out = append(out, e.message)
	}
	return out
}

// Session returns the persisted session, or nil before the first turn.
func (v *View) Session() *domain.ChatSession {
	return v.session
}

// Usage returns the cumulative session token usage.
func (v *View) Usage() domain.TokenUsage {
	return v.statusbar.Usage()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputValue returns the typed question (for testing).
func (v *View) InputValue() string {
	return v.input.Value()
}

// SetInputValue sets the typed question (for testing).
func (v *View) SetInputValue(value string) {
	v.input.SetValue(value)
}
