package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Caia-Tech/caia-legal-corpus/pkg/extractor"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/fetcher"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LEGAL_CRAWLER_"

// PipelineConfig holds complete pipeline configuration
type PipelineConfig struct {
	Logging    *logging.LogConfig `json:"logging" yaml:"logging"`
	Crawl      *CrawlConfig       `json:"crawl" yaml:"crawl"`
	Fetch      *fetcher.Config    `json:"fetch" yaml:"fetch"`
	Extraction *extractor.Options `json:"extraction" yaml:"extraction"`
	Output     *OutputConfig      `json:"output" yaml:"output"`
}

// CrawlConfig holds crawl loop settings
type CrawlConfig struct {
	Seeds        string        `json:"seeds" yaml:"seeds"`               // seed file path
	MaxPages     int           `json:"max_pages" yaml:"max_pages"`       // links per seed
	Rate         time.Duration `json:"rate" yaml:"rate"`                 // politeness delay
	Jurisdiction string        `json:"jurisdiction" yaml:"jurisdiction"` // record jurisdiction
}

// OutputConfig holds corpus paths
type OutputConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// DefaultPipelineConfig returns a complete default configuration
func DefaultPipelineConfig() *PipelineConfig {
	extraction := extractor.DefaultOptions()
	return &PipelineConfig{
		Logging: logging.DefaultLogConfig(),
		Crawl: &CrawlConfig{
			Seeds:        "seeds.json",
			MaxPages:     50,
			Rate:         time.Second,
			Jurisdiction: "PS",
		},
		Fetch:      fetcher.DefaultConfig(),
		Extraction: &extraction,
		Output: &OutputConfig{
			Dir: "out",
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// an optional .env file and LEGAL_CRAWLER_* environment variables, in that
// order of increasing precedence.
func LoadConfig(path string) (*PipelineConfig, error) {
	config := DefaultPipelineConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from environment variables looked up via lookup.
func (c *PipelineConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		return lookup(EnvPrefix + name)
	}

	if v, ok := get("OUT"); ok {
		c.Output.Dir = v
	}
	if v, ok := get("SEEDS"); ok {
		c.Crawl.Seeds = v
	}
	if v, ok := get("JURISDICTION"); ok {
		c.Crawl.Jurisdiction = v
	}
	if v, ok := get("MAX_PAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_PAGES %q: %w", EnvPrefix, v, err)
		}
		c.Crawl.MaxPages = n
	}
	if v, ok := get("RATE"); ok {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sRATE %q: %w", EnvPrefix, v, err)
		}
		c.Crawl.Rate = SecondsToDuration(secs)
	}
	if v, ok := get("ENABLE_OCR"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sENABLE_OCR %q: %w", EnvPrefix, v, err)
		}
		c.Extraction.EnableOCR = b
	}
	if v, ok := get("OCR_LANGUAGE"); ok {
		c.Extraction.OCRLanguage = v
	}
	if v, ok := get("USER_AGENT"); ok {
		c.Fetch.UserAgent = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	if v, ok := get("LOG_FILE"); ok {
		c.Logging.OutputFile = v
	}
	return nil
}

// SecondsToDuration converts a fractional seconds value such as --rate 0.5.
func SecondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
