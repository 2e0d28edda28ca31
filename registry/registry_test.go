package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func testConfig() Config {
	return Config{
		Types: []TypeDef{
			{Name: "core.marker"},
			{Name: "core.problem", Persistent: boolPtr(true), Supertypes: []string{"core.marker"}},
			{Name: "core.task", Persistent: boolPtr(true), Supertypes: []string{"core.marker"}},
			{Name: "java.problem", Supertypes: []string{"core.problem"}},
			{Name: "java.buildpath", Persistent: boolPtr(false), Supertypes: []string{"java.problem"}},
			{Name: "ext.mixed", Supertypes: []string{"core.marker", "plugin.saved"}},
		},
		PersistentPrefixes: []string{"plugin.", "plugin."},
	}
}

func TestRegistry_IsPersistent(t *testing.T) {
	r, err := New(testConfig())
	require.NoError(t, err)

	tests := []struct {
		name string
		want bool
	}{
		{"core.marker", false},
		{"core.problem", true},
		{"core.task", true},
		{"java.problem", true},    // inherited
		{"java.buildpath", false}, // explicit override
		{"ext.mixed", true},       // undeclared supertype with persistent prefix
		{"plugin.anything", true},
		{"unknown.type", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsPersistent(tt.name))
		})
	}
}

func TestRegistry_IsSubtype(t *testing.T) {
	r, err := New(testConfig())
	require.NoError(t, err)

	assert.True(t, r.IsSubtype("java.buildpath", "core.marker"))
	assert.True(t, r.IsSubtype("java.buildpath", "core.problem"))
	assert.True(t, r.IsSubtype("core.task", "core.task"))
	assert.False(t, r.IsSubtype("core.task", "core.problem"))
	assert.False(t, r.IsSubtype("unknown", "core.marker"))
}

func TestRegistry_Types(t *testing.T) {
	r, err := New(testConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"core.marker", "core.problem", "core.task",
		"ext.mixed", "java.buildpath", "java.problem",
	}, r.Types())
}

func TestNew_errors(t *testing.T) {
	tests := []struct {
		name string
		conf Config
	}{
		{"no-name", Config{Types: []TypeDef{{}}}},
		{"duplicate", Config{Types: []TypeDef{{Name: "a"}, {Name: "a"}}}},
		{"cycle", Config{Types: []TypeDef{
			{Name: "a", Supertypes: []string{"b"}},
			{Name: "b", Supertypes: []string{"c"}},
			{Name: "c", Supertypes: []string{"a"}},
		}}},
		{"self", Config{Types: []TypeDef{{Name: "a", Supertypes: []string{"a"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.conf)
			assert.Error(t, err)
			assert.Error(t, tt.conf.Check())
		})
	}
}
