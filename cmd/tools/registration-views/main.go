// registration-views prints the node count and per-agent node counts
// computed by the registration views.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	registrationconsumer "github.com/carverauto/mco-registration/pkg/consumers/registration"
	"github.com/carverauto/mco-registration/pkg/docstore"
	"github.com/carverauto/mco-registration/pkg/lifecycle"
)

type summary struct {
	Nodes  int            `json:"nodes"`
	Agents map[string]int `json:"agents"`
}

func main() {
	var (
		backend      = flag.String("backend", registrationconsumer.BackendCouchDB, "document store backend (couchdb or nats_kv)")
		host         = flag.String("host", "localhost", "CouchDB host")
		port         = flag.String("port", "5984", "CouchDB port")
		db           = flag.String("db", "mcollective", "CouchDB database")
		user         = flag.String("user", "", "CouchDB user")
		passwordFile = flag.String("password-file", "", "file holding the CouchDB password")
		natsURL      = flag.String("nats-url", "nats://127.0.0.1:4222", "NATS server for the nats_kv backend")
		bucket       = flag.String("bucket", "mcollective", "KV bucket for the nats_kv backend")
		timeout      = flag.Duration("timeout", 10*time.Second, "overall query timeout")
		verbose      = flag.Bool("v", false, "log store activity to stderr")
	)

	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}

	log := lifecycle.NewLoggerFromWriter(os.Stderr, level)

	cfg := &registrationconsumer.Config{
		NATSURL: *natsURL,
		Registration: registrationconsumer.StoreConfig{
			Backend:      *backend,
			Host:         *host,
			Port:         *port,
			DB:           *db,
			User:         *user,
			PasswordFile: *passwordFile,
			KVBucket:     *bucket,
		},
	}
	cfg.ApplyDefaults()

	if err := cfg.Registration.ResolvePassword(); err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := registrationconsumer.OpenStore(ctx, cfg, log)
	if err != nil {
		fail(err)
	}

	defer func() { _ = store.Close() }()

	querier, ok := store.(docstore.ViewQuerier)
	if !ok {
		fail(fmt.Errorf("backend %q does not support view queries", *backend))
	}

	var out summary

	if out.Nodes, err = querier.NodeCount(ctx); err != nil {
		fail(fmt.Errorf("nodelist: %w", err))
	}

	if out.Agents, err = querier.AgentCounts(ctx); err != nil {
		fail(fmt.Errorf("agentlist: %w", err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		fail(err)
	}
}

func fail(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "registration-views: %v\n", err)
	os.Exit(1)
}
