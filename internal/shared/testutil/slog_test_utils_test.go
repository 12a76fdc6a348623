package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("code", int64(500)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
		AssertLogContains(t, handler, slog.LevelWarn, "warn")
	})

	t.Run("keeps logger attributes", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "loader")).Info("file loaded")
		logger.WithGroup("req").Info("served", slog.Int("status", 200))

		AssertLogAttr(t, handler, "component", "loader")
		AssertLogAttr(t, handler, "req.status", int64(200))
		assert.Equal(t, 2, handler.Count())
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		require.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
		AssertNoErrors(t, handler)
	})
}

func TestFixtures(t *testing.T) {
	raw := KopiScenario()
	require.Equal(t, 2, raw.Len())
	assert.Equal(t, "Rp 8.000", raw.Rows[0]["Harga"])
	assert.Equal(t, 4, raw.Rows[1]["Jumlah"])

	short := RawTableBuilder("a", "b").Row(1).Build()
	assert.Nil(t, short.Rows[0]["b"])

	table := KopiCanonical()
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "24000", table.At(0).Revenue().String())
}
