// Package extractive provides an offline LLMService that answers by quoting
// the context sentence sharing the most words with the question.
//
// It expects prompts built from the QA template, where the retrieved context
// follows a "Context:" line and the question follows the last "Question:" marker.
package extractive

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Prompt markers recognised when splitting a prompt into context and question.
const (
	ContextMarker  = "Context:"
	QuestionMarker = "Question:"
)

// ModelName is reported for every extractive service.
const ModelName = "extractive"

// NoAnswer is returned when no context sentence shares a word with the question.
const NoAnswer = "I don't know."

// stopwords are ignored when scoring overlap.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"do": {}, "does": {}, "for": {}, "from": {}, "how": {}, "i": {}, "in": {}, "is": {},
	"it": {}, "many": {}, "much": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"was": {}, "what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"with": {}, "you": {},
}

// LLMService is the extractive answerer. It is stateless and safe for concurrent use.
type LLMService struct{}

// NewLLMService creates an extractive LLM service.
func NewLLMService() *LLMService {
	return &LLMService{}
}

// Generate returns the best matching context sentence, or NoAnswer.
func (s *LLMService) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: extractive: %w", domain.ErrGeneration, err)
	}

	passage, question := splitPrompt(prompt)
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: extractive: prompt has no %q marker", domain.ErrGeneration, QuestionMarker)
	}

	want := terms(question)
	best, bestScore := "", 0
	for _, sentence := range sentences(passage) {
		score := 0
		for term := range terms(sentence) {
			if _, ok := want[term]; ok {
				score++
			}
		}
		// Ties keep the earliest sentence.
		if score > bestScore {
			best, bestScore = sentence, score
		}
	}

	if bestScore == 0 {
		return NoAnswer, nil
	}
	return best, nil
}

// splitPrompt returns the context passage and the question.
func splitPrompt(prompt string) (string, string) {
	q := strings.LastIndex(prompt, QuestionMarker)
	if q < 0 {
		return prompt, ""
	}
	passage := prompt[:q]
	question := prompt[q+len(QuestionMarker):]
	if nl := strings.IndexByte(question, '\n'); nl >= 0 {
		question = question[:nl]
	}
	if c := strings.Index(passage, ContextMarker); c >= 0 {
		passage = passage[c+len(ContextMarker):]
	}
	return passage, strings.TrimSpace(question)
}

// sentences splits text on terminal punctuation and blank lines.
func sentences(text string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		s := strings.Join(strings.Fields(cur.String()), " ")
		if s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		cur.WriteRune(r)
		switch {
		case r == '.' || r == '!' || r == '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		case r == '\n' && i > 0 && runes[i-1] == '\n':
			flush()
		}
	}
	flush()
	return out
}

func terms(text string) map[string]struct{} {
	set := make(map[string]struct{})
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, skip := stopwords[w]; skip {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// ModelName returns "extractive".
func (s *LLMService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *LLMService) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
