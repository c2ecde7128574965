package registrationconsumer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/models"
	"github.com/carverauto/mco-registration/pkg/registration"
)

const (
	BackendCouchDB = "couchdb"
	BackendNATSKV  = "nats_kv"

	defaultHost     = "localhost"
	defaultPort     = "5984"
	defaultDB       = "mcollective"
	defaultKVBucket = "mcollective"
	defaultWorkers  = 1
)

// StoreConfig selects and locates the document store.
type StoreConfig struct {
	Backend           string `json:"backend"`
	Host              string `json:"host"`
	Port              string `json:"port"`
	DB                string `json:"db"`
	User              string `json:"user"`
	Password          string `json:"password" sensitive:"true"`
	PasswordFile      string `json:"password_file"`
	ExtraYAMLDir      string `json:"extra_yaml_dir"`
	WatchExtraYAMLDir bool   `json:"watch_extra_yaml_dir"`
	KVBucket          string `json:"kv_bucket"`
}

// Config holds configuration for the registration consumer.
type Config struct {
	ListenAddr   string                 `json:"listen_addr"`
	NATSURL      string                 `json:"nats_url"`
	StreamName   string                 `json:"stream_name"`
	ConsumerName string                 `json:"consumer_name"`
	Subject      string                 `json:"subject"`
	Domain       string                 `json:"domain"`
	Workers      int                    `json:"workers"`
	Security     *models.SecurityConfig `json:"security"`
	Registration StoreConfig            `json:"registration"`
	// Views defaults to nodelist and agentlist only when absent; an explicit
	// empty list installs nothing.
	Views   []string       `json:"views"`
	Logging *logger.Config `json:"logging"`
}

// ApplyDefaults fills every unset registration option.
func (c *Config) ApplyDefaults() {
	r := &c.Registration

	if r.Backend == "" {
		r.Backend = BackendCouchDB
	}

	if r.Host == "" {
		r.Host = defaultHost
	}

	if r.Port == "" {
		r.Port = defaultPort
	}

	if r.DB == "" {
		r.DB = defaultDB
	}

	if r.KVBucket == "" {
		r.KVBucket = defaultKVBucket
	}

	if c.Views == nil {
		c.Views = registration.DefaultViews()
	}

	if c.Workers == 0 {
		c.Workers = defaultWorkers
	}
}

// Validate checks the configuration for required fields.
func (c *Config) Validate() error {
	var errs []error

	if c.NATSURL == "" {
		errs = append(errs, ErrMissingNATSURL)
	}

	if c.StreamName == "" {
		errs = append(errs, ErrMissingStreamName)
	}

	if c.ConsumerName == "" {
		errs = append(errs, ErrMissingConsumerName)
	}

	switch c.Registration.Backend {
	case BackendCouchDB, BackendNATSKV:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownBackend, c.Registration.Backend))
	}

	if c.Workers < 1 {
		errs = append(errs, ErrInvalidWorkers)
	}

	return errors.Join(errs...)
}

// ResolvePassword reads the store password from PasswordFile when no inline
// password is configured.
func (s *StoreConfig) ResolvePassword() error {
	if s.Password != "" || s.PasswordFile == "" {
		return nil
	}

	data, err := os.ReadFile(s.PasswordFile)
	if err != nil {
		return fmt.Errorf("read registration password file: %w", err)
	}

	pwd := strings.TrimSpace(string(data))
	if pwd == "" {
		return fmt.Errorf("%w: %s", ErrPasswordFileEmpty, s.PasswordFile)
	}

	s.Password = pwd

	return nil
}
