// Package config implements the YAML config file parser
package config

import (
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/PowerDNS/markerstream/config/logger"
	"github.com/PowerDNS/markerstream/registry"
)

const (
	// DefaultSnapshotInterval is the default interval between snapshots of
	// dirty resources.
	DefaultSnapshotInterval = 30 * time.Second

	// DefaultSaveInterval is the default interval between full saves.
	// A restore needs the last save plus every snapshot written after it,
	// so this also bounds the amount of snapshots to replay.
	DefaultSaveInterval = 10 * time.Minute

	// DefaultKeepSaves is the number of full saves kept in storage
	DefaultKeepSaves = 3

	// DefaultStorageTimeout is the timeout for a single storage operation
	DefaultStorageTimeout = time.Minute

	// DefaultStorageRetryInterval is the time to wait before retrying a
	// failed store.
	DefaultStorageRetryInterval = 5 * time.Second

	// DefaultStorageRetryCount is the number of store attempts per blob
	DefaultStorageRetryCount = 3
)

// Config is the config root object
type Config struct {
	// Instance names this process in blob names. MUST be unique for each
	// instance sharing a storage bucket. Defaults to the hostname.
	Instance string `yaml:"instance"`

	// TreeFile is a YAML tree file that is loaded on start and re-synced
	// when it changes.
	TreeFile string `yaml:"tree_file"`

	Registry registry.Config `yaml:"registry"`
	Storage  Storage         `yaml:"storage"`
	HTTP     HTTP            `yaml:"http"`
	Health   Health          `yaml:"health"`
	Log      logger.Config   `yaml:"log"`

	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
	SaveInterval     time.Duration `yaml:"save_interval"`
	KeepSaves        int           `yaml:"keep_saves"`
	StorageTimeout   time.Duration `yaml:"storage_timeout"`
	LockWarnLimit    time.Duration `yaml:"lock_warn_limit"`

	// Set to current version by main
	Version string `yaml:"-"`
}

// Storage configures the simpleblob storage backend
type Storage struct {
	Type    string                 `yaml:"type"`
	Options map[string]interface{} `yaml:"options"`

	RetryInterval time.Duration `yaml:"retry_interval"`
	RetryCount    int           `yaml:"retry_count"`
}

// HTTP configures the HTTP server with Prometheus metrics and status page
type HTTP struct {
	Address string `yaml:"address"` // Address like ":8600"
}

// Health configures the health checks on storing saves and snapshots
type Health struct {
	ErrorDuration      time.Duration `yaml:"error_duration"`
	WarnDuration       time.Duration `yaml:"warn_duration"`
	ErrorSequence      uint32        `yaml:"error_sequence"`
	WarnSequence       uint32        `yaml:"warn_sequence"`
	EvaluationInterval time.Duration `yaml:"interval"`
	Startup            StartupHealth `yaml:"startup"`
}

// StartupHealth configures the health check on the startup phase, which
// completes after the restore and the first stored snapshot and save.
type StartupHealth struct {
	ErrorDuration  time.Duration `yaml:"error_duration"`
	WarnDuration   time.Duration `yaml:"warn_duration"`
	ReportHealthz  bool          `yaml:"report_healthz"`
	ReportMetadata bool          `yaml:"report_metadata"`
}

// Check validates a Config instance
func (c Config) Check() error {
	if err := c.Log.Check(); err != nil {
		return err
	}
	if err := c.Registry.Check(); err != nil {
		return err
	}
	if c.Storage.Type == "" {
		return fmt.Errorf("storage.type: no storage type configured")
	}
	if c.Storage.RetryCount < 1 {
		return fmt.Errorf("storage.retry_count: must be at least 1")
	}
	if c.HTTP.Address != "" {
		if _, _, err := net.SplitHostPort(c.HTTP.Address); err != nil {
			return fmt.Errorf("http.address: %v", err)
		}
	}
	if c.SnapshotInterval < 100*time.Millisecond {
		return fmt.Errorf("snapshot_interval: too short interval")
	}
	if c.SaveInterval < c.SnapshotInterval {
		return fmt.Errorf("save_interval: must not be shorter than snapshot_interval")
	}
	if c.KeepSaves < 1 {
		return fmt.Errorf("keep_saves: must be at least 1")
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("storage_timeout: must be positive")
	}
	if c.Health.WarnSequence > c.Health.ErrorSequence {
		return fmt.Errorf("health.warn_sequence: must not be larger than health.error_sequence")
	}
	if c.Health.WarnDuration > c.Health.ErrorDuration {
		return fmt.Errorf("health.warn_duration: must not be longer than health.error_duration")
	}
	return nil
}

// String returns the config as a YAML string
func (c Config) String() string {
	y, err := yaml.Marshal(c)
	if err != nil {
		logrus.Panicf("YAML marshal of config failed: %v", err) // Should never happen
	}
	return string(y)
}

// LoadYAML loads config from YAML. Any set value overwrites any existing value,
// but omitted keys are untouched.
func (c *Config) LoadYAML(yamlContents []byte, expandEnv bool) error {
	if expandEnv {
		yamlContents = []byte(os.ExpandEnv(string(yamlContents)))
	}
	return yaml.UnmarshalStrict(yamlContents, c)
}

// LoadYAMLFile loads config from a YAML file. Any set value overwrites any existing value,
// but omitted keys are untouched.
func (c *Config) LoadYAMLFile(fpath string, expandEnv bool) error {
	contents, err := ioutil.ReadFile(fpath)
	if err != nil {
		return errors.Wrap(err, "open yaml file")
	}
	return c.LoadYAML(contents, expandEnv)
}

// Default returns a Config with default settings
func Default() Config {
	return Config{
		Log: logger.DefaultConfig,

		Storage: Storage{
			Type:    "memory",
			Options: make(map[string]interface{}),

			RetryInterval: DefaultStorageRetryInterval,
			RetryCount:    DefaultStorageRetryCount,
		},
		Health: Health{
			ErrorDuration:      10 * time.Minute,
			WarnDuration:       5 * time.Minute,
			ErrorSequence:      10,
			WarnSequence:       3,
			EvaluationInterval: 5 * time.Second,
			Startup: StartupHealth{
				ErrorDuration:  5 * time.Minute,
				WarnDuration:   time.Minute,
				ReportHealthz:  false,
				ReportMetadata: true,
			},
		},

		SnapshotInterval: DefaultSnapshotInterval,
		SaveInterval:     DefaultSaveInterval,
		KeepSaves:        DefaultKeepSaves,
		StorageTimeout:   DefaultStorageTimeout,
	}
}
