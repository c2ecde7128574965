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

	"github.com/google/uuid"

	"github.com/carverauto/mco-registration/pkg/logger"
)

// Agent handles registration reports end to end. Handle is safe for
// concurrent use; the store is the only shared state.
type Agent struct {
	normalizer *Normalizer
	reconciler *Reconciler
	logger     logger.Logger
	metrics    *Metrics
}

// NewAgent wires a normalizer and reconciler. metrics may be nil.
func NewAgent(normalizer *Normalizer, reconciler *Reconciler, log logger.Logger, metrics *Metrics) *Agent {
	return &Agent{
		normalizer: normalizer,
		reconciler: reconciler,
		logger:     log,
		metrics:    metrics,
	}
}

// Handle processes one report. It never fails towards the caller: dropped
// reports and store errors are logged and counted.
func (a *Agent) Handle(ctx context.Context, data []byte) {
	_ = a.handle(ctx, data)
}

func (a *Agent) handle(ctx context.Context, data []byte) (outcome Outcome) {
	reportID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().
				Str("report_id", reportID).
				Interface("panic", r).
				Msg("Recovered from panic while handling report")

			outcome = OutcomeWriteFailed
			a.metrics.observeReport(outcome)
		}
	}()

	rec, err := a.normalizer.Normalize(ctx, data)

	switch {
	case errors.Is(err, ErrMalformedReport):
		a.logger.Warn().Str("report_id", reportID).Err(err).Msg("Dropping malformed report")

		outcome = OutcomeDroppedMalformed
	case errors.Is(err, ErrMissingFQDN):
		a.logger.Debug().Str("report_id", reportID).Msg("Dropping report missing FQDN")

		outcome = OutcomeDroppedNoFQDN
	case err != nil:
		a.logger.Warn().Str("report_id", reportID).Err(err).Msg("Dropping report")

		outcome = OutcomeDroppedMalformed
	default:
		outcome = a.reconciler.Reconcile(ctx, rec, reportID)
	}

	a.metrics.observeReport(outcome)

	return outcome
}
