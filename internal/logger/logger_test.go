package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("уровень из конфигурации применяется", func(t *testing.T) {
		log, err := New(Config{Level: "debug"})
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zap.DebugLevel))
	})

	t.Run("пустой уровень дает info", func(t *testing.T) {
		log, err := New(Config{})
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zap.DebugLevel))
		assert.True(t, log.Core().Enabled(zap.InfoLevel))
	})

	t.Run("неизвестный уровень откатывается на info", func(t *testing.T) {
		log, err := New(Config{Level: "verbose"})
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zap.DebugLevel))
		assert.True(t, log.Core().Enabled(zap.InfoLevel))
	})

	t.Run("console-кодировка принимается", func(t *testing.T) {
		_, err := New(Config{Encoding: "console"})
		require.NoError(t, err)
	})

	t.Run("файл лога создается и пишется", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "server.log")
		log, err := New(Config{OutputPath: path})
		require.NoError(t, err)

		log.Info("startup")
		require.NoError(t, log.Sync())
		assert.FileExists(t, path)
	})
}
