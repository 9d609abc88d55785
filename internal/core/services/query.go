package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure QueryPipeline implements the interface.
var _ driving.QueryService = (*QueryPipeline)(nil)

// contextSeparator joins retrieved chunks in the prompt.
const contextSeparator = "\n\n"

// QueryPipeline answers questions from the indexed documents.
type QueryPipeline struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	llm      driven.LLMService
	prompts  driven.PromptStore
	logs     driven.QueryLogStore
	settings domain.QuerySettings
	now      func() time.Time
}

// NewQueryPipeline creates a query pipeline.
// Zero values in settings fall back to the defaults.
func NewQueryPipeline(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	llm driven.LLMService,
	prompts driven.PromptStore,
	logs driven.QueryLogStore,
	settings domain.QuerySettings,
) *QueryPipeline {
	if settings.TopK <= 0 {
		settings.TopK = domain.DefaultTopK
	}
	if settings.GenerationTimeout <= 0 {
		settings.GenerationTimeout = domain.DefaultGenerationTimeout
	}
	return &QueryPipeline{
		embedder: embedder,
		index:    index,
		llm:      llm,
		prompts:  prompts,
		logs:     logs,
		settings: settings,
		now:      time.Now,
	}
}

// AnswerQuery retrieves the closest chunks and generates an answer from them.
func (q *QueryPipeline) AnswerQuery(ctx context.Context, query string) (domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Answer{}, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	ready, err := q.index.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrIndexUnavailable) {
			return domain.Answer{}, err
		}
		logger.Warn("query: index unavailable, answering not ready: %v", err)
		ready = false
	}
	if !ready || q.index.Len() == 0 {
		return notReady(), nil
	}

	logger.Section("Query")

	if built, want := q.index.Fingerprint(), driven.EmbeddingFingerprint(q.embedder); built != "" && built != want {
		return domain.Answer{}, fmt.Errorf("%w: index built with %s, query embedder is %s",
			domain.ErrEmbeddingMismatch, built, want)
	}

	vector, err := q.embedder.Embed(ctx, query)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}

	hits, err := q.index.Search(ctx, vector, q.settings.TopK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("search: %w", err)
	}
	logger.Debug("retrieved %d chunks", len(hits))

	template, err := q.prompts.Load(driven.PromptQA)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("load prompt: %w", err)
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	retrieved := strings.Join(texts, contextSeparator)
	prompt := fmt.Sprintf(template, retrieved, query)

	genCtx, cancel := context.WithTimeout(ctx, q.settings.GenerationTimeout)
	defer cancel()

	text, err := q.llm.Generate(genCtx, prompt, driven.GenerateOptions{})
	if err != nil {
		if errors.Is(err, domain.ErrGeneration) {
			return domain.Answer{}, err
		}
		return domain.Answer{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	return domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: Sources(hits),
		Context: retrieved,
		Hits:    hits,
		Ready:   true,
	}, nil
}

// LogQuery writes one audit entry.
func (q *QueryPipeline) LogQuery(ctx context.Context, entry *domain.QueryLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = q.now()
	}
	if err := q.logs.Save(ctx, entry); err != nil {
		return fmt.Errorf("save query log: %w", err)
	}
	return nil
}

// Ask answers query for userID and logs the attempt once, whatever its outcome.
// A log write failure is reported but does not discard a successful answer.
func (q *QueryPipeline) Ask(ctx context.Context, userID int64, query string) (domain.Answer, error) {
	answer, err := q.AnswerQuery(ctx, query)

	entry := &domain.QueryLog{UserID: userID, QueryText: query}
	if err != nil {
		entry.ResponseText = domain.ErrorMarkerPrefix + err.Error()
		entry.SourceReferences = domain.SourcesUnavailable
	} else {
		entry.ResponseText = answer.Text
		entry.RetrievedContext = answer.Context
		entry.SourceReferences = answer.Sources
	}

	if logErr := q.LogQuery(context.WithoutCancel(ctx), entry); logErr != nil {
		logger.Error("query log for user=%d not written: %v", userID, logErr)
	}

	if err != nil {
		logger.Error("query failed user=%d kind=%s: %v", userID, domain.Classify(err), err)
		return domain.Answer{}, fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
	}
	return answer, nil
}

// History returns a user's queries newest first.
func (q *QueryPipeline) History(ctx context.Context, userID int64, offset, limit int) ([]domain.QueryLog, error) {
	return q.logs.ListByUser(ctx, userID, offset, limit)
}

// AllLogs returns every user's queries newest first.
func (q *QueryPipeline) AllLogs(ctx context.Context, offset, limit int) ([]domain.QueryLog, error) {
	return q.logs.List(ctx, offset, limit)
}

// Sources returns the sorted, de-duplicated filenames of hits joined by ", ",
// or domain.NoSourcesFound when there are none.
func Sources(hits []domain.SearchHit) string {
	seen := make(map[string]struct{}, len(hits))
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		name := h.Metadata.Filename
		if name == "" {
			name = domain.UnknownSource
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return domain.NoSourcesFound
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func notReady() domain.Answer {
	return domain.Answer{
		Text:    domain.NotReadyAnswer,
		Sources: domain.NoSourcesFound,
	}
}
