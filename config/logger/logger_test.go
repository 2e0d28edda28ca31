package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Check(t *testing.T) {
	assert.NoError(t, DefaultConfig.Check())

	c := DefaultConfig
	c.Level = "loud"
	assert.Error(t, c.Check())

	c = DefaultConfig
	c.Format = "xml"
	assert.Error(t, c.Check())

	c = DefaultConfig
	c.Timestamp = ""
	assert.NoError(t, c.Check())
	c.Timestamp = "always"
	assert.Error(t, c.Check())
}

func TestConfig_Merge(t *testing.T) {
	c := DefaultConfig.Merge(Config{Level: "debug"})
	assert.Equal(t, Config{Level: "debug", Format: "human", Timestamp: "short"}, c)
}

func TestNamespaceFormatter(t *testing.T) {
	f := &NamespaceFormatter{Parent: &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	}}
	l := logrus.New()

	e := logrus.NewEntry(l).WithField("instance", "node1")
	e.Message = "Saved"
	out, err := f.Format(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `msg="[node1       ] Saved"`)

	e = logrus.NewEntry(l)
	e.Message = "Saved"
	out, err = f.Format(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), "msg=Saved")
}

func TestConfig_Formatter(t *testing.T) {
	assert.IsType(t, &logrus.JSONFormatter{}, Config{Format: "json"}.Formatter())
	assert.IsType(t, &logrus.TextFormatter{}, Config{Format: "logfmt"}.Formatter())
	assert.IsType(t, &NamespaceFormatter{}, Config{Format: "human"}.Formatter())
}
