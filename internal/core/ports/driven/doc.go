// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Ingestion
//
//   - TextExtractor: Turns a stored PDF, DOCX or TXT file into plain text
//   - Chunker: Splits extracted text into overlapping spans
//   - EmbeddingService: Maps text to vectors
//   - VectorIndex: Persistent nearest-neighbour store over embedded chunks
//
// # Answering
//
//   - LLMService: Generates an answer from a prompt
//   - PromptStore: User-customisable prompt templates
//
// # Records
//
//   - DocumentStore: Document metadata and lifecycle status
//   - QueryLogStore: Audit trail of every query
//   - JobStore: Background ingestion job tracking
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
