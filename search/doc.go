// Copyright 2025 Stash Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search provides hybrid lexical and semantic retrieval over
// captured items.
//
// The Searcher type is the public entry point. A search call runs through:
//
//  1. Query normalization: hashtags, a content type synonym, and a relative
//     date phrase are extracted from the raw text and become filters.
//  2. Leg dispatch per mode: lexical (substring matching), semantic (vector
//     similarity), or hybrid (both, concurrently).
//  3. Score fusion: hybrid results are merged with configurable weights,
//     defaulting to 0.7 vector / 0.3 lexical, with deterministic ordering.
//
// Hybrid mode degrades gracefully: when the embedding provider or vector
// index fails, the search returns lexical-only results flagged as degraded
// instead of an error. Semantic mode has no fallback and propagates such
// failures. Every query is scoped to a single owner; the vector index
// contract makes cross-owner results impossible rather than merely
// discouraged.
package search
