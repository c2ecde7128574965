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

// Package docstore persists node records in a revisioned document store.
package docstore

//go:generate mockgen -destination=mock_store.go -package=docstore github.com/carverauto/mco-registration/pkg/docstore Store,ViewQuerier

import (
	"context"

	"github.com/carverauto/mco-registration/pkg/models"
)

// Store is a revisioned document store holding one NodeRecord per node.
// Implementations must be safe for concurrent use.
type Store interface {
	// Lookup fetches the current record for id.
	Lookup(ctx context.Context, id string) LookupResult
	// Save creates rec, or updates it when rec.Revision is set.
	Save(ctx context.Context, rec *models.NodeRecord) (Revision, error)
	// CreateView stores a view definition, returning ErrViewExists when a
	// design document with the same id is already present.
	CreateView(ctx context.Context, def models.ViewDefinition) error
	Close() error
}

// ViewQuerier reads the aggregate views created by the bootstrapper.
type ViewQuerier interface {
	NodeCount(ctx context.Context) (int, error)
	AgentCounts(ctx context.Context) (map[string]int, error)
}

// Pinger is implemented by stores that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}
