// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded file and its ingestion lifecycle status
//   - Chunk: A span of extracted text produced during ingestion
//   - IndexEntry / SearchHit: What the vector index stores and returns
//   - QueryLog: The audit record written for every question asked
//   - IngestJob: A tracked background ingestion run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
