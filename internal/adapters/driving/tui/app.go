package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Rows taken by everything except the transcript: title, input box, status bar.
const chromeHeight = 6

// Turn is one question and its outcome.
type Turn struct {
	Question string
	Answer   domain.Answer
	Err      error
}

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	userID int64

	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	statusbar *status.Bar

	turns    []Turn
	pending  string
	thinking bool
	err      error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat that asks questions as userID.
func NewApp(ports *Ports, userID int64) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	input := textinput.New()
	input.Placeholder = "Ask a question about your documents..."
	input.Prompt = "> "
	input.CharLimit = 1000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = s.Speaker

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		userID:    userID,
		styles:    s,
		keymap:    km,
		input:     input,
		viewport:  viewport.New(80, 24-chromeHeight),
		spinner:   spin,
		statusbar: status.NewBar(s, km),
	}, nil
}

// WithContext sets the context questions are asked under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("docqa chat"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.AnswerReceived:
		a.thinking = false
		a.pending = ""
		a.turns = append(a.turns, Turn{Question: msg.Question, Answer: msg.Answer, Err: msg.Err})
		a.statusbar.SetTurns(len(a.turns))
		if msg.Err != nil {
			a.err = msg.Err
			a.statusbar.SetState(status.StateError)
			a.statusbar.SetMessage(msg.Err.Error())
		} else {
			a.err = nil
			a.statusbar.SetState(status.StateReady)
			a.statusbar.SetMessage("")
		}
		a.refresh()
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
		return a, nil

	case spinner.TickMsg:
		if !a.thinking {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.statusbar.SetSpinner(a.spinner.View())
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(key, a.keymap.ScrollUp), keymap.Matches(key, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case keymap.Matches(key, a.keymap.Clear):
		if a.thinking {
			return a, nil
		}
		a.turns = nil
		a.err = nil
		a.statusbar.Clear()
		a.refresh()
		return a, nil

	case keymap.Matches(key, a.keymap.Send):
		question := strings.TrimSpace(a.input.Value())
		if question == "" || a.thinking {
			return a, nil
		}
		a.pending = question
		a.thinking = true
		a.input.Reset()
		a.statusbar.SetState(status.StateThinking)
		a.refresh()
		return a, tea.Batch(a.ask(question), a.spinner.Tick)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// ask runs the question off the update loop. Failures come back as part of
// the message so they land in the transcript.
func (a *App) ask(question string) tea.Cmd {
	query := a.ports.Query
	ctx := a.ctx
	userID := a.userID
	return func() tea.Msg {
		answer, err := query.Ask(ctx, userID, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (a *App) refresh() {
	a.viewport.SetContent(a.transcript())
	a.viewport.GotoBottom()
}

func (a *App) transcript() string {
	if len(a.turns) == 0 && a.pending == "" {
		return a.styles.Muted.Render("Answers are drawn from your uploaded documents. Type a question and press enter.")
	}

	wrap := lipgloss.NewStyle().Width(max(a.width-2, 20))
	var b strings.Builder
	for i := range a.turns {
		turn := &a.turns[i]
		b.WriteString(wrap.Render(a.styles.Question.Render("You: ") + turn.Question))
		b.WriteString("\n")
		switch {
		case turn.Err != nil:
			b.WriteString(wrap.Render(a.styles.Error.Render("Error: " + turn.Err.Error())))
		case !turn.Answer.Ready:
			b.WriteString(wrap.Render(a.styles.Warning.Render(turn.Answer.Text)))
		default:
			b.WriteString(wrap.Render(a.styles.Speaker.Render("docqa: ") + a.styles.Answer.Render(turn.Answer.Text)))
			b.WriteString("\n")
			b.WriteString(wrap.Render(a.styles.Sources.Render("Sources: " + turn.Answer.Sources)))
		}
		b.WriteString("\n\n")
	}
	if a.pending != "" {
		b.WriteString(wrap.Render(a.styles.Question.Render("You: ") + a.pending))
		b.WriteString("\n")
		b.WriteString(a.styles.Muted.Render("..."))
	}
	return b.String()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("docqa")+" "+a.styles.Muted.Render("chat"),
		a.viewport.View(),
		a.styles.InputField.Width(max(a.width-2, 10)).Render(a.input.View()),
		a.statusbar.View(),
	)
}

// SetDimensions resizes the chat to the terminal.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.viewport.Width = width
	a.viewport.Height = max(height-chromeHeight, 1)
	a.input.Width = max(width-6, 10)
	a.statusbar.SetWidth(width)
	a.refresh()
}

// Turns returns the finished questions, oldest first.
func (a *App) Turns() []Turn {
	return a.turns
}

// Thinking reports whether a question is in flight.
func (a *App) Thinking() bool {
	return a.thinking
}

// Input returns the text currently typed.
func (a *App) Input() string {
	return a.input.Value()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}
