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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/mco-registration/pkg/models"
)

var (
	// ErrMalformedReport marks a payload that is not a JSON object.
	ErrMalformedReport = errors.New("facts missing - did you configure reporting correctly?")
	// ErrMissingFQDN marks a report without a usable facts.fqdn.
	ErrMissingFQDN = errors.New("report missing FQDN")
)

// Normalizer turns raw report payloads into candidate node records.
type Normalizer struct {
	extra ExtraLoader
	now   func() time.Time
}

// NewNormalizer creates a Normalizer. extra may be nil when no aux directory
// is configured; a nil clock defaults to time.Now.
func NewNormalizer(extra ExtraLoader, clock func() time.Time) *Normalizer {
	if clock == nil {
		clock = time.Now
	}

	return &Normalizer{extra: extra, now: clock}
}

// Normalize decodes data, which is either a bare report or an envelope
// wrapping one, into a record with no revision. It returns
// ErrMalformedReport or ErrMissingFQDN for reports that must be dropped.
func (n *Normalizer) Normalize(ctx context.Context, data []byte) (*models.NodeRecord, error) {
	report, senderID, err := decodeReport(data)
	if err != nil {
		return nil, err
	}

	fqdn := report.FQDN()
	if fqdn == "" {
		return nil, ErrMissingFQDN
	}

	identity := report.Identity
	if identity == "" {
		identity = senderID
	}

	rec := &models.NodeRecord{
		ID:          fqdn,
		Type:        models.NodeRecordType,
		Key:         fqdn,
		Identity:    identity,
		AgentList:   report.AgentList,
		Facts:       report.Facts,
		Classes:     report.Classes,
		Collectives: report.Collectives,
		LastSeen:    n.now().Unix(),
	}

	if n.extra != nil {
		rec.Extra = n.extra.Load(ctx)
	}

	return rec, nil
}

func decodeReport(data []byte) (*models.Report, string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, "", ErrMalformedReport
	}

	body := data
	senderID := ""

	if isEnvelope(top) {
		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrMalformedReport, err)
		}

		var inner map[string]json.RawMessage
		if err := json.Unmarshal(env.Body, &inner); err != nil || inner == nil {
			return nil, "", ErrMalformedReport
		}

		body = env.Body
		senderID = env.SenderID
	}

	// keep numeric facts exact
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var report models.Report
	if err := dec.Decode(&report); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrMalformedReport, err)
	}

	return &report, senderID, nil
}

// isEnvelope reports whether the object wraps a report body instead of
// being one.
func isEnvelope(top map[string]json.RawMessage) bool {
	_, hasBody := top["body"]
	_, hasFacts := top["facts"]

	return hasBody && !hasFacts
}
