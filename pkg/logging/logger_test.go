package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger_JSONConsole(t *testing.T) {
	defer func(l zerolog.Logger, lvl zerolog.Level) {
		log.Logger = l
		zerolog.SetGlobalLevel(lvl)
	}(log.Logger, zerolog.GlobalLevel())

	var buf bytes.Buffer
	require.NoError(t, setupLogger(&LogConfig{Level: "info", Format: "json", Console: true}, &buf))

	logger := GetCrawlLogger("run-1", "https://example.org")
	logger.Info().Str("url", "https://example.org/a.pdf").Msg("persisted")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "crawler", line["component"])
	assert.Equal(t, "run-1", line["run_id"])
	assert.Equal(t, "https://example.org", line["seed"])
	assert.Equal(t, "persisted", line["message"])
}

func TestSetupLogger_File(t *testing.T) {
	defer func(l zerolog.Logger, lvl zerolog.Level) {
		log.Logger = l
		zerolog.SetGlobalLevel(lvl)
	}(log.Logger, zerolog.GlobalLevel())

	path := filepath.Join(t.TempDir(), "logs", "crawl.log")
	require.NoError(t, SetupLogger(&LogConfig{Level: "debug", Format: "json", OutputFile: path}))

	logger := GetLogger("test")
	logger.Warn().Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	assert.Error(t, SetupLogger(&LogConfig{Level: "loud"}))
}
