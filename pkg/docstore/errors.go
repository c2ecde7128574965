/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package docstore

import "errors"

var (
	ErrNotFound   = errors.New("document not found")
	ErrConflict   = errors.New("document update conflict")
	ErrViewExists = errors.New("view already exists")

	errMissingID       = errors.New("document id is required")
	errInvalidRevision = errors.New("invalid revision")
	errUnexpectedRows  = errors.New("unexpected view result")
	errUnavailable     = errors.New("store unavailable")
	errMissingRevision = errors.New("stored document has no revision")
)
