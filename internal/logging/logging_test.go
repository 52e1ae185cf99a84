package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var l Logger = NewZapLogger(zap.New(core).Sugar())

	l.With("user", "u1").Infof("saved %d tasks", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "saved 3 tasks", entries[0].Message)
	assert.Equal(t, "u1", entries[0].ContextMap()["user"])
}

func TestNewFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "floe.log")
	l, err := NewFile(path, "info")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("visible")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"visible"`)
	assert.NotContains(t, string(data), "hidden")
}
