// Package ingestion provides pipeline orchestration for capturing items.
//
// The Pipeline type manages the capture workflow, including:
//   - Adding items to storage, with content-derived IDs for URL captures
//   - Generating embedding records asynchronously
//   - Propagating deletes to derived embedding records
//
// Embedding generation runs on a worker pool so capture latency never
// depends on the embedding provider. Errors during async processing are
// logged but do not fail the capture operation.
package ingestion
