package registrationconsumer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/mco-registration/pkg/config"
)

func TestConfigApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, BackendCouchDB, cfg.Registration.Backend)
	assert.Equal(t, "localhost", cfg.Registration.Host)
	assert.Equal(t, "5984", cfg.Registration.Port)
	assert.Equal(t, "mcollective", cfg.Registration.DB)
	assert.Equal(t, "mcollective", cfg.Registration.KVBucket)
	assert.Equal(t, []string{"nodelist", "agentlist"}, cfg.Views)
	assert.Equal(t, 1, cfg.Workers)
	assert.Empty(t, cfg.Registration.ExtraYAMLDir)
}

func TestConfigKeepsExplicitEmptyViews(t *testing.T) {
	t.Parallel()

	cfg := &Config{Views: []string{}}
	cfg.ApplyDefaults()

	assert.Empty(t, cfg.Views)
	assert.NotNil(t, cfg.Views)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := &Config{Workers: -1, Registration: StoreConfig{Backend: "mongodb"}}

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrMissingNATSURL)
	require.ErrorIs(t, err, ErrMissingStreamName)
	require.ErrorIs(t, err, ErrMissingConsumerName)
	require.ErrorIs(t, err, ErrUnknownBackend)
	require.ErrorIs(t, err, ErrInvalidWorkers)
}

func TestConfigLoadFromFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := filepath.Join(t.TempDir(), "registration.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"listen_addr": ":9480",
		"nats_url": "nats://127.0.0.1:4222",
		"stream_name": "mcollective",
		"consumer_name": "registration",
		"subject": "mcollective.registration",
		"registration": {"host": "couch.internal", "user": "admin", "password": "hunter2"}
	}`), 0o600))

	var cfg Config

	require.NoError(t, config.NewConfig(nil).LoadAndValidate(t.Context(), path, &cfg))

	assert.Equal(t, "couch.internal", cfg.Registration.Host)
	assert.Equal(t, "5984", cfg.Registration.Port)
	assert.Equal(t, []string{"nodelist", "agentlist"}, cfg.Views)

	sanitized, err := config.SanitizeForLog(&cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(sanitized), "hunter2")
}

func TestResolvePasswordFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(path, []byte("s3cret\n"), 0o600))

	s := StoreConfig{PasswordFile: path}
	require.NoError(t, s.ResolvePassword())
	assert.Equal(t, "s3cret", s.Password)

	inline := StoreConfig{Password: "inline", PasswordFile: path}
	require.NoError(t, inline.ResolvePassword())
	assert.Equal(t, "inline", inline.Password)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))

	blank := StoreConfig{PasswordFile: empty}
	require.ErrorIs(t, blank.ResolvePassword(), ErrPasswordFileEmpty)
}
