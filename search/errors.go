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


package search

import "errors"

var (
	// ErrItemRepositoryRequired is returned when an item repository is not provided.
	ErrItemRepositoryRequired = errors.New("item repository required")

	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrOwnerRequired is returned when a search is attempted without an owner scope.
	ErrOwnerRequired = errors.New("owner id required")

	// ErrEmptyQuery is returned when a search carries neither query text nor filters.
	ErrEmptyQuery = errors.New("query text or filters required")

	// ErrInvalidMode is returned for an unrecognized search mode.
	ErrInvalidMode = errors.New("invalid search mode")

	// ErrEmbeddingFailed is returned when the embedding provider could not
	// produce a query vector. Retryable; distinct from caller mistakes.
	ErrEmbeddingFailed = errors.New("embedding query failed")

	// ErrNoSearchSignal is returned when every search leg failed.
	// Distinct from an empty-but-successful result set.
	ErrNoSearchSignal = errors.New("all search legs failed")
)
