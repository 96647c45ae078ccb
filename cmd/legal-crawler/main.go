// Package main provides the entry point for the legal corpus crawler
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Caia-Tech/caia-legal-corpus/internal/crawler"
	"github.com/Caia-Tech/caia-legal-corpus/internal/storage"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/extractor"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/fetcher"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/logging"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		// failures are diagnostics only; the exit status stays zero
		fmt.Fprintln(os.Stderr, err)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legal-crawler",
		Short: "Collect Arabic legal documents into a local corpus",
		Long: `legal-crawler fetches each seed page, discovers document links on it and
stores every document with enough text under the output directory:

  files/        original bytes (pdf, html, docx)
  texts/        extracted text
  corpus.jsonl  one record per stored document

Example:
  legal-crawler --seeds seeds.json --out out --max-pages 50 --rate 1`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCrawl,
	}

	flags := cmd.Flags()
	flags.String("config", "", "YAML configuration file")
	flags.String("out", "out", "Output directory")
	flags.Int("max-pages", 50, "Maximum links processed per seed (negative for no limit)")
	flags.Float64("rate", 1.0, "Delay between requests in seconds")
	flags.Bool("enable-ocr", false, "Run OCR on PDFs with little or no Arabic text")
	flags.String("seeds", "seeds.json", "Seed file with {\"sources\":[{\"url\":...}]}")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	return cmd
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	config, err := pipeline.LoadConfig(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, config)

	if err := logging.SetupLogger(config.Logging); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	caps := extractor.DetectCapabilities()
	if config.Extraction.EnableOCR && caps.OCR != extractor.OCRAvailable {
		log.Warn().Str("ocr", caps.OCR.String()).Msg("OCR requested but not available in this build")
	}
	engine := extractor.NewEngine(*config.Extraction, caps, extractor.NewPageRecognizer(config.Extraction.OCRLanguage))

	metrics := storage.NewSimpleMetricsCollector()
	store, err := storage.NewCorpusStore(config.Output.Dir, config.Crawl.Jurisdiction, metrics)
	if err != nil {
		return err
	}

	c := crawler.NewCrawler(&crawler.CrawlerConfig{
		MaxPages: config.Crawl.MaxPages,
		Rate:     config.Crawl.Rate,
	}, fetcher.New(config.Fetch), nil, engine, store)

	seeds := crawler.LoadSeeds(config.Crawl.Seeds)
	log.Info().
		Str("run_id", c.RunID()).
		Int("seeds", len(seeds)).
		Str("out", config.Output.Dir).
		Int("max_pages", config.Crawl.MaxPages).
		Dur("rate", config.Crawl.Rate).
		Str("ocr", engine.Capabilities().OCR.String()).
		Msg("Starting crawl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports := c.Run(ctx, seeds)
	logSummary(c, reports, metrics)
	return nil
}

// applyFlags lets explicitly set flags win over file and environment values.
func applyFlags(cmd *cobra.Command, config *pipeline.PipelineConfig) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		config.Output.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("max-pages") {
		config.Crawl.MaxPages, _ = flags.GetInt("max-pages")
	}
	if flags.Changed("rate") {
		secs, _ := flags.GetFloat64("rate")
		config.Crawl.Rate = pipeline.SecondsToDuration(secs)
	}
	if flags.Changed("enable-ocr") {
		config.Extraction.EnableOCR, _ = flags.GetBool("enable-ocr")
	}
	if flags.Changed("seeds") {
		config.Crawl.Seeds, _ = flags.GetString("seeds")
	}
	if flags.Changed("log-level") {
		config.Logging.Level, _ = flags.GetString("log-level")
	}
}

func logSummary(c *crawler.Crawler, reports []*crawler.SeedReport, metrics *storage.SimpleMetricsCollector) {
	totals := make(map[string]int)
	failedSeeds := 0
	for _, r := range reports {
		if r.Err != nil {
			failedSeeds++
		}
		for kind, n := range r.Counts() {
			totals[kind] += n
		}
	}

	stats := c.LimiterStats()
	log.Info().
		Str("run_id", c.RunID()).
		Int("seeds", len(reports)).
		Int("failed_seeds", failedSeeds).
		Interface("outcomes", totals).
		Int64("requests", stats.RequestCount).
		Int64("request_errors", stats.ErrorCount).
		Msg("Crawl finished")

	for op, s := range metrics.GetMetricsSummary() {
		log.Debug().
			Str("operation", op).
			Int("success", s.SuccessCount).
			Int("failure", s.FailureCount).
			Float64("avg_ms", s.GetAvgDurationMs()).
			Int64("bytes", s.TotalBytes).
			Msg("Storage metrics")
	}
}
