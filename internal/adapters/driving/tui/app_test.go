package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newTestApp(t *testing.T, query *mockQueryService) *App {
	t.Helper()
	app, err := NewApp(&Ports{Query: query}, 7)
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func typeText(app *App, text string) {
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func readyAnswer() domain.Answer {
	return domain.Answer{Text: "Employees get 25 days.", Sources: "policy.txt", Ready: true}
}

// runCmd executes cmd and returns the AnswerReceived it produced, unwrapping batches.
func runCmd(t *testing.T, cmd tea.Cmd) messages.AnswerReceived {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if answer, ok := c().(messages.AnswerReceived); ok {
				return answer
			}
		}
		t.Fatal("batch did not produce an answer")
	}
	answer, ok := msg.(messages.AnswerReceived)
	require.True(t, ok, "unexpected message %T", msg)
	return answer
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{}, 1)

	assert.ErrorIs(t, err, ErrMissingQueryService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t, &mockQueryService{})

	assert.Equal(t, app, app.WithContext(context.Background()))
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, &mockQueryService{})

	assert.NotNil(t, app.Init())
}

func TestApp_ViewBeforeResize(t *testing.T) {
	app, err := NewApp(&Ports{Query: &mockQueryService{}}, 1)
	require.NoError(t, err)

	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_AskFlow(t *testing.T) {
	query := &mockQueryService{answer: readyAnswer()}
	app := newTestApp(t, query)

	typeText(app, "How much leave?")
	assert.Equal(t, "How much leave?", app.Input())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, app.Thinking())
	assert.Equal(t, "", app.Input())
	assert.Contains(t, app.View(), "How much leave?")

	answer := runCmd(t, cmd)
	assert.Equal(t, []string{"How much leave?"}, query.asked)
	assert.Equal(t, []int64{7}, query.users)

	app.Update(answer)

	assert.False(t, app.Thinking())
	require.Len(t, app.Turns(), 1)
	assert.Equal(t, "Employees get 25 days.", app.Turns()[0].Answer.Text)
	view := app.View()
	assert.Contains(t, view, "25 days")
	assert.Contains(t, view, "Sources: policy.txt")
	assert.Contains(t, view, "1 question")
}

func TestApp_BlankQuestionIgnored(t *testing.T) {
	query := &mockQueryService{}
	app := newTestApp(t, query)

	typeText(app, "   ")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, app.Thinking())
	assert.Empty(t, query.asked)
}

func TestApp_OneQuestionAtATime(t *testing.T) {
	query := &mockQueryService{answer: readyAnswer()}
	app := newTestApp(t, query)

	typeText(app, "first")
	_, first := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)

	typeText(app, "second")
	_, second := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, second)
	assert.Equal(t, "second", app.Input())
}

func TestApp_FailedQuestion(t *testing.T) {
	failure := errors.Join(domain.ErrQueryFailed, domain.ErrGeneration)
	query := &mockQueryService{err: failure}
	app := newTestApp(t, query)

	typeText(app, "anything")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(runCmd(t, cmd))

	assert.ErrorIs(t, app.Err(), domain.ErrQueryFailed)
	require.Len(t, app.Turns(), 1)
	assert.Contains(t, app.View(), "Error:")
}

func TestApp_NotReadyAnswer(t *testing.T) {
	app := newTestApp(t, &mockQueryService{})

	app.Update(messages.AnswerReceived{
		Question: "anything",
		Answer:   domain.Answer{Text: domain.NotReadyAnswer, Sources: domain.NoSourcesFound},
	})

	view := app.View()
	assert.Contains(t, view, "Vector store not initialized")
	assert.NotContains(t, view, "Sources:")
}

func TestApp_Clear(t *testing.T) {
	app := newTestApp(t, &mockQueryService{})
	app.Update(messages.AnswerReceived{Question: "q", Answer: readyAnswer()})
	require.Len(t, app.Turns(), 1)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Empty(t, app.Turns())
	assert.Contains(t, app.View(), "Type a question")
}

func TestApp_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}},
		{name: "esc", msg: tea.KeyMsg{Type: tea.KeyEsc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &mockQueryService{})

			_, cmd := app.Update(tt.msg)

			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, &mockQueryService{})

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
	assert.Contains(t, app.View(), "Error: boom")
}
