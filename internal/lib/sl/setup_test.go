package sl_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

func TestSetupLogger(t *testing.T) {
	t.Run("local пишет текст и debug", func(t *testing.T) {
		var buf bytes.Buffer
		sl.SetupLogger("local", &buf).Debug("hello")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("prod пишет JSON без debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := sl.SetupLogger("prod", &buf)
		log.Debug("hidden")
		log.Info("shown")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "INFO", entry["level"])
	})
}
