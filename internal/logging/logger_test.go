package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitWritesJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, level, err := Init(Options{Directory: dir, Level: "debug", MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	logger.Info("hello", zap.String("k", "v"))
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "dashboard.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestSetLevel(t *testing.T) {
	level := zap.NewAtomicLevel()
	require.NoError(t, SetLevel(level, "warn"))
	assert.Equal(t, zapcore.WarnLevel, level.Level())
	require.NoError(t, SetLevel(level, ""))
	assert.Equal(t, zapcore.InfoLevel, level.Level())
	assert.Error(t, SetLevel(level, "loud"))
}
