package logging

import (
	"bytes"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "logfmt", "warn")
	require.NoError(t, err)

	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown", "step", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "step=3")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "json", "debug")
	require.NoError(t, err)
	level.Debug(logger).Log("msg", "hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestRejectsUnknown(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "xml", "info")
	assert.Error(t, err)
	_, err = New(&bytes.Buffer{}, "logfmt", "loud")
	assert.Error(t, err)
}
