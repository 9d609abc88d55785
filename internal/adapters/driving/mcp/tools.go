package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Defaults for list tools.
const (
	defaultListLimit    = 20
	defaultHistoryLimit = 10
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query  string `json:"query" jsonschema:"the question to answer from the uploaded documents"`
	UserID int64  `json:"user_id,omitempty" jsonschema:"user the query is logged under (default 0)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string `json:"answer"`
	Sources string `json:"sources"`
	Ready   bool   `json:"ready"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	DocumentID int64 `json:"document_id" jsonschema:"the document to (re-)ingest"`
	Wait       bool  `json:"wait,omitempty" jsonschema:"block until ingestion finishes"`
}

// JobStatusInput is the input schema for the job_status tool.
type JobStatusInput struct {
	JobID string `json:"job_id" jsonschema:"the ingestion job ID"`
}

// JobOutput describes an ingestion job.
type JobOutput struct {
	JobID      string `json:"job_id"`
	DocumentID int64  `json:"document_id"`
	Status     string `json:"status"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Offset int `json:"offset,omitempty" jsonschema:"number of documents to skip"`
	Limit  int `json:"limit,omitempty" jsonschema:"maximum number of documents to return (default 20)"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes a document record.
type DocumentOutput struct {
	ID         int64  `json:"id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Version    int    `json:"version"`
	OwnerID    int64  `json:"owner_id"`
	UploadedAt string `json:"uploaded_at"`
}

// QueryHistoryInput is the input schema for the query_history tool.
type QueryHistoryInput struct {
	UserID int64 `json:"user_id,omitempty" jsonschema:"user whose history to return"`
	All    bool  `json:"all,omitempty" jsonschema:"return every user's history instead"`
	Limit  int   `json:"limit,omitempty" jsonschema:"maximum number of entries (default 10)"`
}

// QueryHistoryOutput is the output schema for the query_history tool.
type QueryHistoryOutput struct {
	Entries []QueryLogOutput `json:"entries"`
	Count   int              `json:"count"`
}

// QueryLogOutput is one query log entry.
type QueryLogOutput struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	Sources   string `json:"sources"`
	Timestamp string `json:"timestamp"`
}

// FeedbackInput is the input schema for the feedback tool.
type FeedbackInput struct {
	QueryID int64  `json:"query_id" jsonschema:"ID of the logged query, as returned by query_history"`
	Rating  int    `json:"rating" jsonschema:"rating from 1 (useless) to 5 (exact)"`
	Comment string `json:"comment,omitempty" jsonschema:"optional comment"`
	UserID  int64  `json:"user_id,omitempty" jsonschema:"user leaving the feedback"`
}

// FeedbackOutput is the output schema for the feedback tool.
type FeedbackOutput struct {
	FeedbackID int64  `json:"feedback_id"`
	QueryID    int64  `json:"query_id"`
	Rating     int    `json:"rating"`
	Timestamp  string `json:"timestamp"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the uploaded documents and cite the source files",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Queue (or run) ingestion of an uploaded document",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "job_status",
		Description: "Report the state of an ingestion job",
	}, s.handleJobStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List uploaded documents, newest first",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_history",
		Description: "List past queries and their answers, newest first",
	}, s.handleQueryHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "feedback",
		Description: "Rate a logged answer from 1 to 5",
	}, s.handleFeedback)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Ask(ctx, input.UserID, input.Query)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		Answer:  answer.Text,
		Sources: answer.Sources,
		Ready:   answer.Ready,
	}, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, JobOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, JobOutput{}, fmt.Errorf("ingest: %w", ErrServiceUnavailable)
	}

	var (
		job *domain.IngestJob
		err error
	)
	if input.Wait {
		job, err = s.ports.Ingestion.IngestSync(ctx, input.DocumentID)
	} else {
		job, err = s.ports.Ingestion.Ingest(ctx, input.DocumentID)
	}
	if err != nil {
		return nil, JobOutput{}, err
	}
	return nil, toJobOutput(job), nil
}

// handleJobStatus handles the job_status tool invocation.
func (s *Server) handleJobStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input JobStatusInput,
) (*mcp.CallToolResult, JobOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, JobOutput{}, fmt.Errorf("job_status: %w", ErrServiceUnavailable)
	}

	job, err := s.ports.Ingestion.Job(ctx, input.JobID)
	if err != nil {
		return nil, JobOutput{}, err
	}
	return nil, toJobOutput(job), nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("list_documents: %w", ErrServiceUnavailable)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	docs, err := s.ports.Document.List(ctx, input.Offset, limit)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}
	return nil, output, nil
}

// handleQueryHistory handles the query_history tool invocation.
func (s *Server) handleQueryHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryHistoryInput,
) (*mcp.CallToolResult, QueryHistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var (
		logs []domain.QueryLog
		err  error
	)
	if input.All {
		logs, err = s.ports.Query.AllLogs(ctx, 0, limit)
	} else {
		logs, err = s.ports.Query.History(ctx, input.UserID, 0, limit)
	}
	if err != nil {
		return nil, QueryHistoryOutput{}, err
	}

	output := QueryHistoryOutput{
		Entries: make([]QueryLogOutput, len(logs)),
		Count:   len(logs),
	}
	for i := range logs {
		output.Entries[i] = QueryLogOutput{
			ID:        logs[i].ID,
			UserID:    logs[i].UserID,
			Query:     logs[i].QueryText,
			Response:  logs[i].ResponseText,
			Sources:   logs[i].SourceReferences,
			Timestamp: logs[i].Timestamp.Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

// handleFeedback handles the feedback tool invocation.
func (s *Server) handleFeedback(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FeedbackInput,
) (*mcp.CallToolResult, FeedbackOutput, error) {
	if s.ports.Feedback == nil {
		return nil, FeedbackOutput{}, fmt.Errorf("feedback: %w", ErrServiceUnavailable)
	}

	fb := &domain.Feedback{
		QueryID: input.QueryID,
		UserID:  input.UserID,
		Rating:  input.Rating,
		Comment: input.Comment,
	}
	if err := s.ports.Feedback.Submit(ctx, fb); err != nil {
		return nil, FeedbackOutput{}, err
	}
	return nil, FeedbackOutput{
		FeedbackID: fb.ID,
		QueryID:    fb.QueryID,
		Rating:     fb.Rating,
		Timestamp:  fb.Timestamp.Format(time.RFC3339),
	}, nil
}

func toJobOutput(job *domain.IngestJob) JobOutput {
	out := JobOutput{
		JobID:      job.ID,
		DocumentID: job.DocumentID,
		Status:     string(job.Status),
		ErrorKind:  job.ErrorKind,
		Error:      job.Error,
		ChunkCount: job.ChunkCount,
		CreatedAt:  job.CreatedAt.Format(time.RFC3339),
	}
	if !job.FinishedAt.IsZero() {
		out.FinishedAt = job.FinishedAt.Format(time.RFC3339)
	}
	return out
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         doc.ID,
		Filename:   doc.Filename,
		Status:     doc.Status.String(),
		Version:    doc.Version,
		OwnerID:    doc.OwnerID,
		UploadedAt: doc.UploadedAt.Format(time.RFC3339),
	}
}
