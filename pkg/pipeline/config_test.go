package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultPipelineConfig(t *testing.T) {
	config := DefaultPipelineConfig()

	assert.Equal(t, "LegalCrawler/1.0 (+contact: admin@example.com)", config.Fetch.UserAgent)
	assert.Equal(t, 25*time.Second, config.Fetch.Timeout)
	assert.Equal(t, int64(100*1024*1024), config.Fetch.MaxContentSize)
	assert.Equal(t, time.Second, config.Crawl.Rate)
	assert.Equal(t, 50, config.Crawl.MaxPages)
	assert.Equal(t, "seeds.json", config.Crawl.Seeds)
	assert.Equal(t, "PS", config.Crawl.Jurisdiction)
	assert.Equal(t, "out", config.Output.Dir)
	assert.False(t, config.Extraction.EnableOCR)
	assert.Equal(t, "ara", config.Extraction.OCRLanguage)
	assert.Equal(t, 5, config.Extraction.OCRMaxPages)
	assert.Equal(t, 50, config.Extraction.OCRMinChars)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
crawl:
  max_pages: 7
  rate: 2s
  seeds: portals.json
extraction:
  enable_ocr: true
output:
  dir: corpus
logging:
  level: debug
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7, config.Crawl.MaxPages)
	assert.Equal(t, 2*time.Second, config.Crawl.Rate)
	assert.Equal(t, "portals.json", config.Crawl.Seeds)
	assert.Equal(t, "PS", config.Crawl.Jurisdiction)
	assert.True(t, config.Extraction.EnableOCR)
	assert.Equal(t, "ara", config.Extraction.OCRLanguage)
	assert.Equal(t, "corpus", config.Output.Dir)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl: [unclosed"), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	config := DefaultPipelineConfig()
	err := config.ApplyEnv(envMap(map[string]string{
		"LEGAL_CRAWLER_OUT":        "/tmp/corpus",
		"LEGAL_CRAWLER_MAX_PAGES":  "3",
		"LEGAL_CRAWLER_RATE":       "0.25",
		"LEGAL_CRAWLER_ENABLE_OCR": "true",
		"LEGAL_CRAWLER_LOG_LEVEL":  "warn",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/corpus", config.Output.Dir)
	assert.Equal(t, 3, config.Crawl.MaxPages)
	assert.Equal(t, 250*time.Millisecond, config.Crawl.Rate)
	assert.True(t, config.Extraction.EnableOCR)
	assert.Equal(t, "warn", config.Logging.Level)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "max pages", env: map[string]string{"LEGAL_CRAWLER_MAX_PAGES": "many"}},
		{name: "rate", env: map[string]string{"LEGAL_CRAWLER_RATE": "fast"}},
		{name: "ocr", env: map[string]string{"LEGAL_CRAWLER_ENABLE_OCR": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, DefaultPipelineConfig().ApplyEnv(envMap(tt.env)))
		})
	}
}
