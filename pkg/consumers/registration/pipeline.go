package registrationconsumer

import (
	"context"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/mco-registration/pkg/docstore"
	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/natsutil"
	"github.com/carverauto/mco-registration/pkg/registration"
)

// kvStore owns the dedicated NATS connection behind a NATS KV store.
type kvStore struct {
	*docstore.NATSKV
	nc *nats.Conn
}

func (k *kvStore) Close() error {
	err := k.NATSKV.Close()
	k.nc.Close()

	return err
}

// OpenStore connects the document store selected by cfg.Registration.Backend.
func OpenStore(ctx context.Context, cfg *Config, log logger.Logger) (docstore.Store, error) {
	r := cfg.Registration

	switch r.Backend {
	case BackendCouchDB:
		store, err := docstore.NewCouchDB(ctx, docstore.CouchDBConfig{
			Host:     r.Host,
			Port:     r.Port,
			DB:       r.DB,
			User:     r.User,
			Password: r.Password,
		}, log)
		if err != nil {
			return nil, err
		}

		return store, nil
	case BackendNATSKV:
		nc, err := natsutil.Connect(cfg.NATSURL, clientName+"-kv", cfg.Security, log)
		if err != nil {
			return nil, err
		}

		js, err := natsutil.NewJetStream(nc, cfg.Domain)
		if err != nil {
			nc.Close()
			return nil, err
		}

		store, err := docstore.NewNATSKV(ctx, js, r.KVBucket, log)
		if err != nil {
			nc.Close()
			return nil, err
		}

		return &kvStore{NATSKV: store, nc: nc}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, r.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewAgent installs the configured views and assembles the report handler.
// The returned closer releases the aux-file watcher, if any.
func NewAgent(ctx context.Context, cfg *Config, store docstore.Store, metrics *registration.Metrics,
	log logger.Logger) (*registration.Agent, io.Closer, error) {
	registration.NewBootstrapper(store, log, metrics).Ensure(ctx, cfg.Views)

	var (
		extra  registration.ExtraLoader
		closer io.Closer = nopCloser{}
	)

	switch dir := cfg.Registration.ExtraYAMLDir; {
	case dir == "":
	case cfg.Registration.WatchExtraYAMLDir:
		watched, err := registration.NewWatchedLoader(ctx, dir, log)
		if err != nil {
			return nil, nil, fmt.Errorf("watch extra_yaml_dir: %w", err)
		}

		extra, closer = watched, watched
	default:
		extra = registration.NewDirLoader(dir, log)
	}

	agent := registration.NewAgent(
		registration.NewNormalizer(extra, nil),
		registration.NewReconciler(store, log, metrics),
		log,
		metrics,
	)

	return agent, closer, nil
}
