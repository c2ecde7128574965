package registrationconsumer

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/mco-registration/pkg/docstore"
	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/registration"
)

func TestReportReplacesDocumentWithForeignSchema(t *testing.T) {
	t.Parallel()

	srv := runJetStreamServer(t)
	log := logger.NewTestLogger()
	ctx := context.Background()

	cfg := &Config{
		NATSURL:      srv.ClientURL(),
		StreamName:   "mcollective",
		ConsumerName: "registration",
		Views:        []string{},
		Registration: StoreConfig{Backend: BackendNATSKV, KVBucket: "registration_legacy"},
	}
	cfg.ApplyDefaults()

	store, err := OpenStore(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	kv, err := js.KeyValue(ctx, "registration_legacy")
	require.NoError(t, err)

	_, err = kv.Put(ctx, "n1.example.com",
		[]byte(`{"_id": "n1.example.com", "key": "n1.example.com", "identity": 42, "agentlist": "rpcutil"}`))
	require.NoError(t, err)

	agent, closer, err := NewAgent(ctx, cfg, store, registration.NewMetrics(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })

	agent.Handle(ctx, []byte(`{"identity": "n1", "facts": {"fqdn": "n1.example.com"}, "agentlist": ["rpcutil", "package"]}`))

	res := store.Lookup(ctx, "n1.example.com")
	require.Equal(t, docstore.LookupFound, res.Status)
	assert.Equal(t, "n1", res.Record.Identity)
	assert.Equal(t, []string{"rpcutil", "package"}, res.Record.AgentList)
	assert.Equal(t, "2", res.Record.Revision)
}
