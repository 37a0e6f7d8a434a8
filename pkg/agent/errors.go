// Copyright 2025 Cambio Authors
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

package agent

import "errors"

var (
	// ErrInvalidRequest indicates the incoming message carries no usable text.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrModelBackend indicates the model backend failed after retries.
	ErrModelBackend = errors.New("model backend error")

	// ErrExhausted indicates the orchestration loop hit its iteration limit
	// without the model producing a final answer.
	ErrExhausted = errors.New("orchestration exhausted")

	// ErrTimeout indicates the request deadline expired mid-conversation.
	ErrTimeout = errors.New("request timed out")
)
