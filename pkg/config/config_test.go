package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/mco-registration/pkg/models"
)

var errMissingName = errors.New("name is required")

type sampleConfig struct {
	Name     string                 `json:"name"`
	Port     string                 `json:"port"`
	Security *models.SecurityConfig `json:"security"`
}

func (s *sampleConfig) ApplyDefaults() {
	if s.Port == "" {
		s.Port = "5984"
	}
}

func (s *sampleConfig) Validate() error {
	if s.Name == "" {
		return errMissingName
	}

	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "registration.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeConfig(t, `{
		"name": "registration",
		"security": {"mode": "mtls", "cert_dir": "/etc/mco/certs", "tls": {"cert_file": "client.pem", "key_file": "/abs/key.pem", "ca_file": "ca.pem"}}
	}`)

	var cfg sampleConfig

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "registration", cfg.Name)
	assert.Equal(t, "5984", cfg.Port, "defaults are applied before validation")
	require.NotNil(t, cfg.Security)
	assert.Equal(t, "/etc/mco/certs/client.pem", cfg.Security.TLS.CertFile)
	assert.Equal(t, "/abs/key.pem", cfg.Security.TLS.KeyFile)
	assert.Equal(t, "/etc/mco/certs/ca.pem", cfg.Security.TLS.ClientCAFile)
}

func TestLoadAndValidateRunsValidator(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeConfig(t, `{"port": "6984"}`)

	var cfg sampleConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.ErrorIs(t, err, errMissingName)
}

func TestLoadAndValidateRejectsUnknownSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	var cfg sampleConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "unused.json", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	var cfg sampleConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), filepath.Join(t.TempDir(), "nope.json"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadAndValidateFromEnvSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "")
	t.Setenv("MCO_REGISTRATION_NAME", "from-env")
	t.Setenv("MCO_REGISTRATION_CONFIG_JSON", "")

	var cfg sampleConfig

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))
	assert.Equal(t, "from-env", cfg.Name)
	assert.Nil(t, cfg.Security, "untouched pointer sections stay nil")
}
