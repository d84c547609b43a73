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


// Package openai implements the ai interfaces against OpenAI-compatible
// embedding APIs (Ollama, LocalAI, vLLM, OpenAI itself).
//
// The implementation uses langchaingo's openai client and embedder wrapper.
// Authentication uses a placeholder token by default, suitable for local
// services that don't check it.
//
// Inputs longer than Config.MaxInputChars are truncated rune-safely before
// being sent to the service.
package openai
