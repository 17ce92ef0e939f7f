package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanfleet/coffeeplan/internal/infrastructure/config"
	"github.com/beanfleet/coffeeplan/internal/infrastructure/logging"
)

func TestLogger_JSONRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("info", "json", &buf)

	logger.Log("info", "solver finished", map[string]interface{}{
		"status":  "Optimal",
		"plan_id": 17,
	})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "solver finished", record["message"])
	assert.Equal(t, "Optimal", record["status"])
	assert.Equal(t, float64(17), record["plan_id"])
	assert.Contains(t, record, "time")
}

func TestLogger_LevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("warn", "json", &buf)

	logger.Log("debug", "noise", nil)
	logger.Log("info", "noise", nil)
	assert.Zero(t, buf.Len())

	logger.Log("warn", "kept", nil)
	logger.Log("error", "kept", nil)
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestLogger_TextFormatSortsMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("debug", "text", &buf)

	logger.Log("warn", "retrying", map[string]interface{}{
		"delay":   "2s",
		"attempt": 3,
	})

	// the first 20 bytes are the RFC3339 UTC timestamp
	assert.Equal(t, " WARN retrying attempt=3 delay=2s\n", buf.String()[20:])
}

func TestNew_FromConfig(t *testing.T) {
	logger, err := logging.New(&config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	})

	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNew_FileOutputRequiresPath(t *testing.T) {
	_, err := logging.New(&config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "file",
	})

	assert.Error(t, err)
}

func TestNew_FileOutputWritesToPath(t *testing.T) {
	path := t.TempDir() + "/planner.log"
	logger, err := logging.New(&config.LoggingConfig{
		Level:    "info",
		Format:   "text",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Log("info", "started", nil)

	assert.FileExists(t, path)
}
