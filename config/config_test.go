package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PowerDNS/markerstream/registry"
)

const testYAML = `
instance: node1
tree_file: /etc/markerstream/tree.yaml
registry:
  persistent_prefixes: ["problem."]
  types:
    - name: task
      persistent: true
    - name: todo
      supertypes: [task]
storage:
  type: fs
  options:
    root_path: ${TEST_MARKERS_ROOT}
snapshot_interval: 5s
save_interval: 1m
keep_saves: 2
http:
  address: ":8600"
log:
  level: debug
`

func TestConfig_LoadYAML(t *testing.T) {
	t.Setenv("TEST_MARKERS_ROOT", "/var/lib/markers")

	c := Default()
	require.NoError(t, c.LoadYAML([]byte(testYAML), true))
	require.NoError(t, c.Check())

	assert.Equal(t, "node1", c.Instance)
	assert.Equal(t, "fs", c.Storage.Type)
	assert.Equal(t, "/var/lib/markers", c.Storage.Options["root_path"])
	assert.Equal(t, 5*time.Second, c.SnapshotInterval)
	assert.Equal(t, time.Minute, c.SaveInterval)
	assert.Equal(t, 2, c.KeepSaves)
	assert.Equal(t, []string{"problem."}, c.Registry.PersistentPrefixes)
	require.Len(t, c.Registry.Types, 2)
	assert.Equal(t, []string{"task"}, c.Registry.Types[1].Supertypes)

	// Omitted keys keep their defaults
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "human", c.Log.Format)
	assert.Equal(t, DefaultStorageTimeout, c.StorageTimeout)
}

func TestConfig_LoadYAML_noExpand(t *testing.T) {
	t.Setenv("TEST_MARKERS_ROOT", "/var/lib/markers")

	c := Default()
	require.NoError(t, c.LoadYAML([]byte(testYAML), false))
	assert.Equal(t, "${TEST_MARKERS_ROOT}", c.Storage.Options["root_path"])
}

func TestConfig_LoadYAML_strict(t *testing.T) {
	c := Default()
	err := c.LoadYAML([]byte("snapshot_intervall: 5s\n"), false)
	assert.Error(t, err)
}

func TestConfig_LoadYAMLFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "markerstream.yaml")
	require.NoError(t, os.WriteFile(p, []byte("keep_saves: 7\n"), 0o644))

	c := Default()
	require.NoError(t, c.LoadYAMLFile(p, false))
	assert.Equal(t, 7, c.KeepSaves)

	err := c.LoadYAMLFile(filepath.Join(t.TempDir(), "missing.yaml"), false)
	assert.Error(t, err)
}

func TestConfig_Check(t *testing.T) {
	assert.NoError(t, Default().Check())

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"no storage", func(c *Config) { c.Storage.Type = "" }},
		{"bad address", func(c *Config) { c.HTTP.Address = "8600" }},
		{"short snapshot interval", func(c *Config) { c.SnapshotInterval = time.Millisecond }},
		{"save before snapshot", func(c *Config) { c.SaveInterval = time.Second }},
		{"keep no saves", func(c *Config) { c.KeepSaves = 0 }},
		{"no store attempts", func(c *Config) { c.Storage.RetryCount = 0 }},
		{"no storage timeout", func(c *Config) { c.StorageTimeout = 0 }},
		{"warn after error", func(c *Config) { c.Health.WarnSequence = 20 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"registry duplicate", func(c *Config) {
			c.Registry.Types = []registry.TypeDef{{Name: "a"}, {Name: "a"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			assert.Error(t, c.Check())
		})
	}
}

func TestConfig_String(t *testing.T) {
	c := Default()
	c.Instance = "node1"
	c.Version = "v1.2.3"
	s := c.String()
	assert.Contains(t, s, "instance: node1")
	assert.NotContains(t, s, "v1.2.3")
}
