// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - IngestionPipeline: extract, chunk, embed and index uploaded documents
//   - QueryPipeline: retrieve context, generate answers and keep the query log
//   - DocumentService: manage uploaded files and their records
//   - SettingsService: typed access to the configuration file
package services
