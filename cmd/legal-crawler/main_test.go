package main

import (
	"testing"
	"time"

	"github.com/Caia-Tech/caia-legal-corpus/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	t.Run("explicit flags override config", func(t *testing.T) {
		cmd := rootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--out", "corpus", "--rate", "0.5", "--max-pages=-1", "--enable-ocr"}))

		config := pipeline.DefaultPipelineConfig()
		config.Crawl.Seeds = "from-file.json"
		applyFlags(cmd, config)

		assert.Equal(t, "corpus", config.Output.Dir)
		assert.Equal(t, 500*time.Millisecond, config.Crawl.Rate)
		assert.Equal(t, -1, config.Crawl.MaxPages)
		assert.True(t, config.Extraction.EnableOCR)
		assert.Equal(t, "from-file.json", config.Crawl.Seeds, "unset flag keeps config value")
	})

	t.Run("flag defaults do not clobber config", func(t *testing.T) {
		cmd := rootCmd()
		require.NoError(t, cmd.ParseFlags(nil))

		config := pipeline.DefaultPipelineConfig()
		config.Output.Dir = "elsewhere"
		config.Crawl.Rate = 3 * time.Second
		applyFlags(cmd, config)

		assert.Equal(t, "elsewhere", config.Output.Dir)
		assert.Equal(t, 3*time.Second, config.Crawl.Rate)
	})
}
