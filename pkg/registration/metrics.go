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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels the fate of a single report.
type Outcome string

const (
	OutcomeInserted         Outcome = "inserted"
	OutcomeUpdated          Outcome = "updated"
	OutcomeDroppedMalformed Outcome = "dropped_malformed"
	OutcomeDroppedNoFQDN    Outcome = "dropped_no_fqdn"
	OutcomeWriteFailed      Outcome = "write_failed"
	OutcomeLookupFailed     Outcome = "lookup_failed"
)

// ViewOutcome labels the result of installing one view.
type ViewOutcome string

const (
	ViewCreated ViewOutcome = "created"
	ViewExists  ViewOutcome = "exists"
	ViewFailed  ViewOutcome = "failed"
)

const metricsNamespace = "mco_registration"

// Metrics holds the registration counters. A nil *Metrics records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	reports   *prometheus.CounterVec
	views     *prometheus.CounterVec
	roundTrip *prometheus.HistogramVec
}

// NewMetrics registers the registration metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reports_total",
			Help:      "Registration reports handled, by outcome.",
		}, []string{"outcome"}),
		views: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "views_total",
			Help:      "View bootstrap attempts, by outcome.",
		}, []string{"outcome"}),
		roundTrip: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "store_roundtrip_seconds",
			Help:      "Lookup plus write time per report.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// Registry exposes the registry backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeReport(outcome Outcome) {
	if m == nil {
		return
	}

	m.reports.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) observeView(outcome ViewOutcome) {
	if m == nil {
		return
	}

	m.views.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) observeRoundTrip(update bool, elapsed time.Duration) {
	if m == nil {
		return
	}

	op := "insert"
	if update {
		op = "update"
	}

	m.roundTrip.WithLabelValues(op).Observe(elapsed.Seconds())
}
