package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	t.Run("emits JSON records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := setupLogger("info", &buf)

		logger.Info("test message", "key", "value")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "test message", record["msg"])
		assert.Equal(t, "value", record["key"])
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := setupLogger("warn", &buf)

		logger.Info("suppressed")
		logger.Warn("emitted")

		output := buf.String()
		assert.NotContains(t, output, "suppressed")
		assert.Contains(t, output, "emitted")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := setupLogger("chatty", &buf)

		logger.Debug("suppressed")
		logger.Info("emitted")

		lines := strings.Count(strings.TrimSpace(buf.String()), "\n") + 1
		assert.Equal(t, 1, lines)
	})
}
