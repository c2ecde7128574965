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
	"net"
	"net/http"
	"net/url"

	kivik "github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb" // registers the "couch" driver

	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/models"
)

const couchDriver = "couch"

// CouchDBConfig locates a CouchDB database. User and Password are optional.
type CouchDBConfig struct {
	Host     string
	Port     string
	DB       string
	User     string
	Password string
}

// URL returns the server URL with basic auth credentials embedded when both
// user and password are set.
func (c CouchDBConfig) URL() *url.URL {
	u := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/",
	}

	if c.User != "" && c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	return u
}

// CouchDB is a Store backed by a CouchDB database through kivik.
type CouchDB struct {
	client *kivik.Client
	db     *kivik.DB
	name   string
	logger logger.Logger
}

var (
	_ Store       = (*CouchDB)(nil)
	_ ViewQuerier = (*CouchDB)(nil)
	_ Pinger      = (*CouchDB)(nil)
)

// NewCouchDB connects to the configured server and creates the database when
// it does not exist yet.
func NewCouchDB(ctx context.Context, cfg CouchDBConfig, log logger.Logger) (*CouchDB, error) {
	serverURL := cfg.URL()

	log.Info().
		Str("url", serverURL.Redacted()+cfg.DB).
		Msg("Connecting to CouchDB")

	client, err := kivik.New(couchDriver, serverURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create CouchDB client: %w", err)
	}

	if err := ensureDatabase(ctx, client, cfg.DB); err != nil {
		_ = client.Close()
		return nil, err
	}

	db := client.DB(cfg.DB)
	if err := db.Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DB, err)
	}

	return &CouchDB{client: client, db: db, name: cfg.DB, logger: log}, nil
}

func ensureDatabase(ctx context.Context, client *kivik.Client, name string) error {
	exists, err := client.DBExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check database %s: %w", name, err)
	}

	if exists {
		return nil
	}

	err = client.CreateDB(ctx, name)
	if err != nil && kivik.HTTPStatus(err) != http.StatusPreconditionFailed {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}

	return nil
}

// Lookup implements Store.
func (c *CouchDB) Lookup(ctx context.Context, id string) LookupResult {
	var raw json.RawMessage

	err := c.db.Get(ctx, id).ScanDoc(&raw)

	switch {
	case kivik.HTTPStatus(err) == http.StatusNotFound:
		return NotFound()
	case err != nil:
		return Failed(fmt.Errorf("failed to get %s: %w", id, err))
	}

	var meta struct {
		Rev string `json:"_rev"`
	}

	if err := json.Unmarshal(raw, &meta); err != nil || meta.Rev == "" {
		return Failed(fmt.Errorf("%w: %s", errMissingRevision, id))
	}

	return Found(storedRecord(id, raw, meta.Rev))
}

// Save implements Store.
func (c *CouchDB) Save(ctx context.Context, rec *models.NodeRecord) (Revision, error) {
	if rec == nil || rec.ID == "" {
		return Revision{}, errMissingID
	}

	rev, err := c.db.Put(ctx, rec.ID, rec)
	if err != nil {
		return Revision{}, classifyWriteError(rec.ID, err)
	}

	return Revision{ID: rec.ID, Rev: rev}, nil
}

// CreateView implements Store.
func (c *CouchDB) CreateView(ctx context.Context, def models.ViewDefinition) error {
	_, err := c.db.Put(ctx, def.DesignID(), def.DesignDocument())
	if err == nil {
		return nil
	}

	if kivik.HTTPStatus(err) == http.StatusConflict {
		return ErrViewExists
	}

	return fmt.Errorf("failed to save %s: %w", def.DesignID(), err)
}

// NodeCount reduces the nodelist view to a single total.
func (c *CouchDB) NodeCount(ctx context.Context) (int, error) {
	rs := c.db.Query(ctx, models.DesignDocPrefix+"nodelist", "_view/"+models.DefaultViewIndex)

	defer func() { _ = rs.Close() }()

	total := 0

	for rs.Next() {
		var n int
		if err := rs.ScanValue(&n); err != nil {
			return 0, fmt.Errorf("%w: %w", errUnexpectedRows, err)
		}

		total += n
	}

	if err := rs.Err(); err != nil {
		return 0, fmt.Errorf("failed to query nodelist: %w", err)
	}

	return total, nil
}

// AgentCounts returns, per agent, the number of nodes running it.
func (c *CouchDB) AgentCounts(ctx context.Context) (map[string]int, error) {
	rs := c.db.Query(ctx, models.DesignDocPrefix+"agentlist", "_view/"+models.DefaultViewIndex,
		kivik.Param("group", true))

	defer func() { _ = rs.Close() }()

	counts := make(map[string]int)

	for rs.Next() {
		var (
			agent string
			n     int
		)

		if err := rs.ScanKey(&agent); err != nil {
			return nil, fmt.Errorf("%w: %w", errUnexpectedRows, err)
		}

		if err := rs.ScanValue(&n); err != nil {
			return nil, fmt.Errorf("%w: %w", errUnexpectedRows, err)
		}

		counts[agent] = n
	}

	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("failed to query agentlist: %w", err)
	}

	return counts, nil
}

// Ping reports whether the server answers.
func (c *CouchDB) Ping(ctx context.Context) error {
	ok, err := c.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("couchdb ping: %w", err)
	}

	if !ok {
		return errUnavailable
	}

	return nil
}

// Close implements Store.
func (c *CouchDB) Close() error {
	return errors.Join(c.db.Close(), c.client.Close())
}

func classifyWriteError(id string, err error) error {
	switch kivik.HTTPStatus(err) {
	case http.StatusConflict:
		return fmt.Errorf("%w: %s: %w", ErrConflict, id, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s: %w", ErrNotFound, id, err)
	default:
		return fmt.Errorf("failed to save %s: %w", id, err)
	}
}
