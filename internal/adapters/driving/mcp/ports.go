package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions and keeps the query log.
	Query driving.QueryService

	// Ingestion runs and tracks ingestion jobs.
	Ingestion driving.IngestionService

	// Document manages uploaded documents.
	Document driving.DocumentService

	// Feedback records ratings of logged answers.
	Feedback driving.FeedbackService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Ingestion, Document and Feedback are optional; their tools report ErrServiceUnavailable.
	return nil
}
