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

import (
	"encoding/json"

	"github.com/carverauto/mco-registration/pkg/models"
)

// LookupStatus classifies the outcome of a Lookup.
type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupFound
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupFailed:
		return "failed"
	case LookupNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// LookupResult is the outcome of Store.Lookup. Record is set only for
// LookupFound; Err only for LookupFailed. A found Record always carries ID
// and Revision; its other fields are empty when the stored document does not
// decode as a NodeRecord.
type LookupResult struct {
	Status LookupStatus
	Record *models.NodeRecord
	Err    error
}

func Found(rec *models.NodeRecord) LookupResult {
	return LookupResult{Status: LookupFound, Record: rec}
}

func NotFound() LookupResult {
	return LookupResult{Status: LookupNotFound}
}

func Failed(err error) LookupResult {
	return LookupResult{Status: LookupFailed, Err: err}
}

// Revision identifies a stored document version.
type Revision struct {
	ID  string
	Rev string
}

// storedRecord decodes a stored document for Lookup. Only the revision is
// needed to overwrite the document, so a body written with different field
// types still yields a record with ID and Revision set.
func storedRecord(id string, data []byte, rev string) *models.NodeRecord {
	var rec models.NodeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		rec = models.NodeRecord{}
	}

	rec.ID = id
	rec.Revision = rev

	return &rec
}
