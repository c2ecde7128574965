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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/mco-registration/pkg/docstore"
	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/models"
)

const tracerName = "github.com/carverauto/mco-registration/pkg/registration"

// Reconciler writes candidate records, carrying the stored revision forward
// so an existing document is replaced instead of duplicated.
type Reconciler struct {
	store   docstore.Store
	logger  logger.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// NewReconciler creates a Reconciler. metrics may be nil.
func NewReconciler(store docstore.Store, log logger.Logger, metrics *Metrics) *Reconciler {
	return &Reconciler{
		store:   store,
		logger:  log,
		metrics: metrics,
		tracer:  logger.GetTracer(tracerName),
	}
}

// Reconcile looks up rec.ID, copies the stored revision onto rec when the
// document exists and saves it. Failures are logged and reported through the
// returned Outcome; nothing is retried.
func (r *Reconciler) Reconcile(ctx context.Context, rec *models.NodeRecord, reportID string) Outcome {
	ctx, span := r.tracer.Start(ctx, "registration.reconcile",
		trace.WithAttributes(
			attribute.String("fqdn", rec.ID),
			attribute.String("report_id", reportID),
		))
	defer span.End()

	start := time.Now()

	res := r.store.Lookup(ctx, rec.ID)

	update := false

	switch res.Status {
	case docstore.LookupFailed:
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "lookup failed")

		r.logger.Error().
			Err(res.Err).
			Str("report_id", reportID).
			Str("fqdn", rec.ID).
			Str("origin", "docstore.Lookup").
			Str("kind", errorKind(res.Err)).
			Msg("Lookup failed, skipping write")

		return OutcomeLookupFailed
	case docstore.LookupFound:
		rec.Revision = res.Record.Revision
		update = true
	case docstore.LookupNotFound:
		rec.Revision = ""
	}

	rev, err := r.store.Save(ctx, rec)
	elapsed := time.Since(start)

	r.metrics.observeRoundTrip(update, elapsed)

	outcome := OutcomeInserted
	msg := "Inserted"

	if update {
		outcome = OutcomeUpdated
		msg = "Updated"
	}

	if err != nil {
		outcome = OutcomeWriteFailed

		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")

		r.logger.Error().
			Err(err).
			Str("report_id", reportID).
			Str("fqdn", rec.ID).
			Str("origin", "docstore.Save").
			Str("kind", errorKind(err)).
			Msg("Failed to save node record")
	}

	span.SetAttributes(attribute.String("outcome", string(outcome)))

	r.logger.Info().
		Str("report_id", reportID).
		Str("fqdn", rec.ID).
		Str("id", rev.ID).
		Str("rev", rev.Rev).
		Dur("elapsed", elapsed).
		Msgf("%s data for host %s", msg, rec.ID)

	return outcome
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, docstore.ErrConflict):
		return "conflict"
	case errors.Is(err, docstore.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "store_error"
	}
}
