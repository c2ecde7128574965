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

package registration

import (
	"context"
	"errors"

	"github.com/carverauto/mco-registration/pkg/docstore"
	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/models"
)

const (
	ViewNodeList  = "nodelist"
	ViewAgentList = "agentlist"
)

const sumReduce = `function(keys, values) {
  return sum(values);
}
`

const nodeListMap = `function(doc) {
  if (doc.key) {
    emit(doc.key, 1);
  }
}
`

const agentListMap = `function(doc) {
  if (doc.key && doc.agentlist) {
    doc.agentlist.forEach(function(agent) {
      emit(agent, 1);
    });
  }
}
`

var viewCatalogue = map[string]models.ViewDefinition{
	ViewNodeList:  {Name: ViewNodeList, Map: nodeListMap, Reduce: sumReduce},
	ViewAgentList: {Name: ViewAgentList, Map: agentListMap, Reduce: sumReduce},
}

// DefaultViews returns the views installed when none are configured.
func DefaultViews() []string {
	return []string{ViewNodeList, ViewAgentList}
}

// LookupView returns the built-in definition for name.
func LookupView(name string) (models.ViewDefinition, bool) {
	def, ok := viewCatalogue[name]

	return def, ok
}

// Bootstrapper installs the aggregate views into a store.
type Bootstrapper struct {
	store   docstore.Store
	logger  logger.Logger
	metrics *Metrics
}

// NewBootstrapper creates a Bootstrapper. metrics may be nil.
func NewBootstrapper(store docstore.Store, log logger.Logger, metrics *Metrics) *Bootstrapper {
	return &Bootstrapper{store: store, logger: log, metrics: metrics}
}

// Ensure creates every named view that does not exist yet. Failures are
// logged and never returned.
func (b *Bootstrapper) Ensure(ctx context.Context, names []string) {
	for _, name := range names {
		def, ok := LookupView(name)
		if !ok {
			b.logger.Warn().Str("view", name).Msg("Unknown view, skipping")
			continue
		}

		err := b.store.CreateView(ctx, def)

		switch {
		case err == nil:
			b.metrics.observeView(ViewCreated)
			b.logger.Info().Str("view", name).Msg("View created")
		case errors.Is(err, docstore.ErrViewExists):
			b.metrics.observeView(ViewExists)
			b.logger.Info().Str("view", name).Msg("View already created")
		default:
			b.metrics.observeView(ViewFailed)
			b.logger.Error().Err(err).Str("view", name).Msg("Failed to create view")
		}
	}
}
