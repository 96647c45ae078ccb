// Package crawler drives seeds through link discovery and the per-link
// fetch, extract, repair, name and persist pipeline.
package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Caia-Tech/caia-legal-corpus/internal/storage"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/document"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/extractor"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/fetcher"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/filename"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/links"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/logging"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/ratelimit"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/titlerepair"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fetcher retrieves one URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.FetchedContent, error)
}

// CrawlerConfig configures crawler behavior
type CrawlerConfig struct {
	MaxPages int           `json:"max_pages"`
	Rate     time.Duration `json:"rate"`
}

// Crawler processes seeds one at a time and their links one at a time.
type Crawler struct {
	config   *CrawlerConfig
	fetcher  Fetcher
	links    *links.Registry
	engine   *extractor.Engine
	repairer *titlerepair.Repairer
	store    storage.Store
	limiter  *ratelimit.PolitenessLimiter
	runID    string
}

// NewCrawler wires a crawler. registry may be nil for the default host rules.
func NewCrawler(config *CrawlerConfig, f Fetcher, registry *links.Registry, engine *extractor.Engine, store storage.Store) *Crawler {
	if registry == nil {
		registry = links.DefaultRegistry()
	}
	return &Crawler{
		config:   config,
		fetcher:  f,
		links:    registry,
		engine:   engine,
		repairer: titlerepair.NewRepairer(titlerepair.ModeCrawl),
		store:    store,
		limiter:  ratelimit.NewPolitenessLimiter(config.Rate),
		runID:    uuid.NewString(),
	}
}

// RunID identifies this crawler's run in logs.
func (c *Crawler) RunID() string { return c.runID }

// LimiterStats exposes request pacing statistics.
func (c *Crawler) LimiterStats() ratelimit.Stats { return c.limiter.GetStats() }

// Run crawls every seed in order. A failing seed never stops the others.
func (c *Crawler) Run(ctx context.Context, seeds []string) []*SeedReport {
	reports := make([]*SeedReport, 0, len(seeds))
	for _, seed := range seeds {
		if ctx.Err() != nil {
			break
		}
		reports = append(reports, c.CrawlSeed(ctx, seed))
	}
	return reports
}

// CrawlSeed fetches the seed page, discovers up to MaxPages links and
// processes each of them.
func (c *Crawler) CrawlSeed(ctx context.Context, seed string) *SeedReport {
	logger := logging.GetCrawlLogger(c.runID, seed)
	report := &SeedReport{RunID: c.runID, Seed: seed}

	seedURL, candidates, err := c.discover(ctx, seed)
	if err != nil {
		report.Err = err
		logger.Error().Err(err).Str("event", "seed-error").Msg("Seed failed")
		return report
	}
	if c.config.MaxPages >= 0 && len(candidates) > c.config.MaxPages {
		candidates = candidates[:c.config.MaxPages]
	}
	report.Discovered = len(candidates)
	logger.Info().Int("links", len(candidates)).Msg("Links discovered")

	for _, cand := range candidates {
		if err := c.limiter.Wait(ctx); err != nil {
			report.Outcomes = append(report.Outcomes, LinkOutcome{Kind: OutcomeCanceled, URL: cand.URL, Err: err})
			break
		}
		outcome := c.processLink(ctx, seedURL, cand.URL)
		c.limiter.Done()
		logOutcome(logger, outcome)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	logger.Info().
		Int("discovered", report.Discovered).
		Interface("outcomes", report.Counts()).
		Msg("Seed finished")
	return report
}

func (c *Crawler) discover(ctx context.Context, seed string) (*url.URL, []links.Candidate, error) {
	seedURL, err := url.Parse(seed)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid seed url: %w", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}
	page, err := c.fetcher.Fetch(ctx, seed)
	c.limiter.Done()
	if err != nil {
		c.limiter.RecordError()
		return nil, nil, err
	}
	candidates, err := c.links.Extract([]byte(page.Text()), seed)
	if err != nil {
		return nil, nil, err
	}
	return seedURL, candidates, nil
}

func (c *Crawler) processLink(ctx context.Context, seedURL *url.URL, link string) LinkOutcome {
	target, ok := normalizeLink(seedURL, link)
	if !ok {
		return LinkOutcome{Kind: OutcomeNonHTTP, URL: link}
	}
	link = target.String()

	ct := document.ClassifyURL(link)
	fetched, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		c.limiter.RecordError()
		return LinkOutcome{Kind: OutcomeFetchFailed, URL: link, Err: err}
	}

	content := fetched.Body
	if ct == document.ContentTypeHTML {
		content = []byte(fetched.Text())
	}
	doc, extractErr := c.extract(ctx, ct, content, link)
	if doc == nil {
		return LinkOutcome{Kind: OutcomeExtractFailed, URL: link, Err: extractErr}
	}
	if !doc.HasMinimumContent() {
		if extractErr != nil {
			return LinkOutcome{Kind: OutcomeExtractFailed, URL: link, Err: extractErr}
		}
		return LinkOutcome{Kind: OutcomeBelowMinimum, URL: link}
	}

	doc.ContentID = storage.ContentID(link)
	doc.RepairedTitle = c.repairer.Repair(doc.RawTitle)
	safeTitle := filename.ForCrawl(doc.RepairedTitle)
	if safeTitle == "" {
		safeTitle = extractor.FallbackTitle
	}

	record, err := c.store.Persist(ctx, doc, safeTitle)
	if err != nil {
		return LinkOutcome{Kind: OutcomePersistFailed, URL: link, Err: err}
	}
	return LinkOutcome{Kind: OutcomePersisted, URL: link, Record: record}
}

// extract runs the engine, turning a panic from a document parser into an
// error so one broken file only fails its own link.
func (c *Crawler) extract(ctx context.Context, ct document.ContentType, content []byte, link string) (doc *document.ExtractedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("extractor panicked on %s: %v", link, r)
		}
	}()
	return c.engine.Extract(ctx, ct, content, link)
}

// normalizeLink retries non-http links once against the seed and rewrites
// PDFPre.aspx postback targets to the PDF they wrap.
func normalizeLink(seedURL *url.URL, link string) (*url.URL, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, false
	}
	if !isHTTP(u) {
		u = seedURL.ResolveReference(u)
		if !isHTTP(u) {
			return nil, false
		}
	}
	if strings.Contains(strings.ToLower(u.String()), "pdfpre.aspx") {
		if pdf, ok := links.PostbackPDF(u); ok {
			u = pdf
		}
	}
	return u, true
}

func isHTTP(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func logOutcome(logger zerolog.Logger, o LinkOutcome) {
	switch o.Kind {
	case OutcomePersisted:
		logger.Info().
			Str("url", o.URL).
			Str("filename", o.Record.Filename).
			Str("title", o.Record.Title).
			Msg("Document saved")
	case OutcomeNonHTTP, OutcomeBelowMinimum:
		logger.Info().Str("event", o.Kind.String()).Str("url", o.URL).Msg("Link skipped")
	default:
		logger.Warn().Err(o.Err).Str("event", o.Kind.String()).Str("url", o.URL).Msg("Link failed")
	}
}
