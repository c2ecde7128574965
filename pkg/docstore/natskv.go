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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/models"
)

// NATSKV is a Store backed by a JetStream key-value bucket. Entry revisions
// stand in for document revisions and are rendered as decimal strings.
type NATSKV struct {
	kv     jetstream.KeyValue
	logger logger.Logger
}

var (
	_ Store       = (*NATSKV)(nil)
	_ ViewQuerier = (*NATSKV)(nil)
	_ Pinger      = (*NATSKV)(nil)
)

// NewNATSKV binds to bucket, creating it when missing.
func NewNATSKV(ctx context.Context, js jetstream.JetStream, bucket string, log logger.Logger) (*NATSKV, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "mcollective node registrations",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create KV bucket %s: %w", bucket, err)
	}

	log.Info().Str("bucket", bucket).Msg("Using NATS KV document store")

	return &NATSKV{kv: kv, logger: log}, nil
}

// Lookup implements Store.
func (n *NATSKV) Lookup(ctx context.Context, id string) LookupResult {
	entry, err := n.kv.Get(ctx, id)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return NotFound()
	}

	if err != nil {
		return Failed(fmt.Errorf("failed to get key %s: %w", id, err))
	}

	return Found(storedRecord(id, entry.Value(), formatRevision(entry.Revision())))
}

// Save implements Store. A record without a revision must not exist yet.
func (n *NATSKV) Save(ctx context.Context, rec *models.NodeRecord) (Revision, error) {
	if rec == nil || rec.ID == "" {
		return Revision{}, errMissingID
	}

	doc := *rec
	doc.Revision = ""

	data, err := json.Marshal(&doc)
	if err != nil {
		return Revision{}, fmt.Errorf("failed to encode %s: %w", rec.ID, err)
	}

	var seq uint64

	if rec.Revision == "" {
		seq, err = n.kv.Create(ctx, rec.ID, data)
	} else {
		var last uint64

		last, err = strconv.ParseUint(rec.Revision, 10, 64)
		if err != nil {
			return Revision{}, fmt.Errorf("%w %q for %s", errInvalidRevision, rec.Revision, rec.ID)
		}

		seq, err = n.kv.Update(ctx, rec.ID, data, last)
	}

	if errors.Is(err, jetstream.ErrKeyExists) {
		return Revision{}, fmt.Errorf("%w: %s: %w", ErrConflict, rec.ID, err)
	}

	if err != nil {
		return Revision{}, fmt.Errorf("failed to save %s: %w", rec.ID, err)
	}

	return Revision{ID: rec.ID, Rev: formatRevision(seq)}, nil
}

// CreateView implements Store.
func (n *NATSKV) CreateView(ctx context.Context, def models.ViewDefinition) error {
	data, err := json.Marshal(def.DesignDocument())
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", def.DesignID(), err)
	}

	_, err = n.kv.Create(ctx, def.DesignID(), data)
	if errors.Is(err, jetstream.ErrKeyExists) {
		return ErrViewExists
	}

	if err != nil {
		return fmt.Errorf("failed to save %s: %w", def.DesignID(), err)
	}

	return nil
}

// NodeCount counts node documents in the bucket.
func (n *NATSKV) NodeCount(ctx context.Context) (int, error) {
	keys, err := n.nodeKeys(ctx)
	if err != nil {
		return 0, err
	}

	return len(keys), nil
}

// AgentCounts tallies agentlist entries across all node documents.
func (n *NATSKV) AgentCounts(ctx context.Context) (map[string]int, error) {
	keys, err := n.nodeKeys(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)

	for _, key := range keys {
		res := n.Lookup(ctx, key)

		switch res.Status {
		case LookupFailed:
			return nil, res.Err
		case LookupNotFound:
			continue
		case LookupFound:
			for _, agent := range res.Record.AgentList {
				counts[agent]++
			}
		}
	}

	return counts, nil
}

func (n *NATSKV) nodeKeys(ctx context.Context) ([]string, error) {
	lister, err := n.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	defer func() { _ = lister.Stop() }()

	var keys []string

	for key := range lister.Keys() {
		if strings.HasPrefix(key, models.DesignDocPrefix) {
			continue
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// Ping reports whether the bucket is reachable.
func (n *NATSKV) Ping(ctx context.Context) error {
	if _, err := n.kv.Status(ctx); err != nil {
		return fmt.Errorf("nats kv status: %w", err)
	}

	return nil
}

// Close implements Store. The NATS connection is owned by the caller.
func (*NATSKV) Close() error {
	return nil
}

func formatRevision(rev uint64) string {
	return strconv.FormatUint(rev, 10)
}
