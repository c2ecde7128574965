package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/models"
)

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	require.Eventually(t, func() bool {
		return srv.JetStreamEnabled()
	}, 5*time.Second, 50*time.Millisecond, "embedded NATS server not ready for JetStream")

	t.Cleanup(srv.Shutdown)

	return srv
}

func newTestNATSKV(t *testing.T) *NATSKV {
	t.Helper()

	srv := runJetStreamServer(t)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := NewNATSKV(ctx, js, "registration_test", logger.NewTestLogger())
	require.NoError(t, err)

	return store
}

func TestNATSKVRevisionedWrites(t *testing.T) {
	t.Parallel()

	store := newTestNATSKV(t)
	ctx := context.Background()

	assert.Equal(t, LookupNotFound, store.Lookup(ctx, "node1.example.com").Status)

	first, err := store.Save(ctx, sampleRecord("node1.example.com", "rpcutil"))
	require.NoError(t, err)
	assert.Equal(t, "node1.example.com", first.ID)
	assert.NotEmpty(t, first.Rev)

	res := store.Lookup(ctx, "node1.example.com")
	require.Equal(t, LookupFound, res.Status)
	assert.Equal(t, first.Rev, res.Record.Revision)
	assert.Equal(t, models.NodeRecordType, res.Record.Type)

	_, err = store.Save(ctx, sampleRecord("node1.example.com", "rpcutil"))
	require.ErrorIs(t, err, ErrConflict, "create over an existing key must conflict")

	update := sampleRecord("node1.example.com", "rpcutil", "package")
	update.Revision = first.Rev

	second, err := store.Save(ctx, update)
	require.NoError(t, err)
	assert.NotEqual(t, first.Rev, second.Rev)

	stale := sampleRecord("node1.example.com")
	stale.Revision = first.Rev

	_, err = store.Save(ctx, stale)
	require.ErrorIs(t, err, ErrConflict)

	res = store.Lookup(ctx, "node1.example.com")
	require.Equal(t, LookupFound, res.Status)
	assert.Equal(t, second.Rev, res.Record.Revision)
	assert.Equal(t, []string{"rpcutil", "package"}, res.Record.AgentList)
}

func TestNATSKVOverwritesForeignDocument(t *testing.T) {
	t.Parallel()

	store := newTestNATSKV(t)
	ctx := context.Background()

	seq, err := store.kv.Put(ctx, "node1.example.com",
		[]byte(`{"_id": "node1.example.com", "key": "node1.example.com", "identity": 42, "agentlist": "rpcutil"}`))
	require.NoError(t, err)

	res := store.Lookup(ctx, "node1.example.com")
	require.Equal(t, LookupFound, res.Status)
	assert.Equal(t, formatRevision(seq), res.Record.Revision)
	assert.Equal(t, "node1.example.com", res.Record.ID)

	update := sampleRecord("node1.example.com", "rpcutil")
	update.Revision = res.Record.Revision

	_, err = store.Save(ctx, update)
	require.NoError(t, err)

	res = store.Lookup(ctx, "node1.example.com")
	require.Equal(t, LookupFound, res.Status)
	assert.Equal(t, "node1.example.com", res.Record.Identity)
	assert.Equal(t, []string{"rpcutil"}, res.Record.AgentList)
}

func TestNATSKVRejectsBadRevision(t *testing.T) {
	t.Parallel()

	store := newTestNATSKV(t)

	rec := sampleRecord("node1.example.com")
	rec.Revision = "1-abc"

	_, err := store.Save(context.Background(), rec)
	require.ErrorIs(t, err, errInvalidRevision)
}

func TestNATSKVViewsAndQueries(t *testing.T) {
	t.Parallel()

	store := newTestNATSKV(t)
	ctx := context.Background()

	def := models.ViewDefinition{Name: "agentlist", Map: "function(doc) {}", Reduce: "function(keys, values) {}"}
	require.NoError(t, store.CreateView(ctx, def))
	require.ErrorIs(t, store.CreateView(ctx, def), ErrViewExists)

	count, err := store.NodeCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "design documents are not nodes")

	_, err = store.Save(ctx, sampleRecord("node1.example.com", "rpcutil", "package"))
	require.NoError(t, err)
	_, err = store.Save(ctx, sampleRecord("node2.example.com", "rpcutil"))
	require.NoError(t, err)

	count, err = store.NodeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	agents, err := store.AgentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"rpcutil": 2, "package": 1}, agents)

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Close())
}
