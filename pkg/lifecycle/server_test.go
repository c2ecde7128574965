package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/mco-registration/pkg/logger"
)

var errStoreDown = errors.New("store unreachable")

type fakeService struct {
	started atomic.Bool
	stopped atomic.Bool
	health  atomic.Value
}

func (f *fakeService) Start(context.Context) error {
	f.started.Store(true)
	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)
	return nil
}

func (f *fakeService) Health(context.Context) error {
	if err, ok := f.health.Load().(error); ok {
		return err
	}

	return nil
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestRunServerServesHealthAndMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "lifecycle_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	svc := &fakeService{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- RunServer(ctx, &ServerOptions{
			ServiceName:       "registration",
			Service:           svc,
			EnableHealthCheck: true,
			Gatherer:          reg,
			Listener:          ln,
		})
	}()

	base := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz") //nolint:noctx // polling
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	assert.True(t, svc.started.Load())

	code, body := get(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "lifecycle_test_total 1")

	svc.health.Store(errStoreDown)

	code, body = get(t, base+"/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "store unreachable")

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunServer did not return after cancellation")
	}

	assert.True(t, svc.stopped.Load())
}

func TestRunServerRequiresService(t *testing.T) {
	err := RunServer(context.Background(), &ServerOptions{ServiceName: "registration"})
	require.ErrorIs(t, err, errNoService)
}

func TestNewLoggerFromWriter(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerFromWriter(&buf, zerolog.InfoLevel)
	log.Debug().Msg("hidden")
	log.Info().Str("fqdn", "node1.example.com").Msg("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"fqdn":"node1.example.com"`)

	buf.Reset()

	component := log.WithComponent("registration")
	component.Info().Msg("tagged")
	assert.Contains(t, buf.String(), `"component":"registration"`)
}

func TestLoggerSetDebug(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerFromWriter(&buf, zerolog.InfoLevel)

	log.SetDebug(true)
	log.Debug().Msg("now visible")
	assert.Contains(t, buf.String(), "now visible")

	buf.Reset()

	log.SetDebug(false)
	log.Debug().Msg("hidden again")
	assert.Empty(t, buf.String())
}

func TestCreateComponentLoggerUsesConfiguredLevel(t *testing.T) {
	log, err := CreateComponentLogger(context.Background(), "registration-store", &logger.Config{Level: "debug", Output: "stderr"})
	require.NoError(t, err)

	assert.Equal(t, zerolog.DebugLevel, log.With().Logger().GetLevel())
}
