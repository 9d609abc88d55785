// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerReceived carries the outcome of one question back to the model.
type AnswerReceived struct {
	Question string
	Answer   domain.Answer
	Err      error
}

// ErrorOccurred reports an error outside of answering.
type ErrorOccurred struct {
	Err error
}
