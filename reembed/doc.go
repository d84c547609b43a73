// Package reembed provides functionality for regenerating embedding records
// for existing items with new or updated embedding models.
//
// This package supports batch processing of items, checkpointed resume,
// progress tracking, retry logic with exponential backoff, and vector
// normalization to ensure compatibility with cosine similarity search.
package reembed
