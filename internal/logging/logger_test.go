package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	logger := New(nil)
	require.NotNil(t, logger)

	// Default level is info; debug output must be suppressed.
	var buf bytes.Buffer
	logger = New(&Config{Output: &buf})
	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Debug: true, Output: &buf})
	logger.Debug("visible", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "key=value")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Format: "json", Output: &buf})
	logger.Info("structured", "count", 3)

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
	assert.Contains(t, out, `"msg":"structured"`)
	assert.Contains(t, out, `"count":3`)
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Output: &buf}).WithComponent("resolver")
	logger.Info("tagged")

	assert.Contains(t, buf.String(), "component=resolver")
}

func TestErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Output: &buf})
	logger.Error(errors.New("boom"), "operation failed")

	out := buf.String()
	assert.Contains(t, out, "operation failed")
	assert.Contains(t, out, "boom")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	// Must not panic and must accept all levels.
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error(errors.New("d"), "e")
}
