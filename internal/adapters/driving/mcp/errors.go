// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ask questions over the uploaded documents and manage ingestion.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrServiceUnavailable is returned by tools whose backing service was not provided.
var ErrServiceUnavailable = errors.New("mcp: service not available")
