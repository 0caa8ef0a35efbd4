package scraper

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maypok86/otter/v2"

	"livetv-scraper/work/classify"
	"livetv-scraper/work/config"
	"livetv-scraper/work/extract"
	"livetv-scraper/work/filter"
	"livetv-scraper/work/linkscan"
	"livetv-scraper/work/locator"
	"livetv-scraper/work/logger"
	"livetv-scraper/work/metrics"
	"livetv-scraper/work/types"
)

// Fetcher retrieves raw markup for a URL. Satisfied by client.BrowserClient;
// tests substitute a stub.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Scraper composes the extraction pipeline: fetch, locate, extract,
// classify, dedupe, filter, paginate. It holds no session state; the only
// mutable piece is a TTL memo of discovered link sets so re-rendering a
// record does not refetch an unchanged detail page.
type Scraper struct {
	fetcher   Fetcher
	cfg       *config.Config
	listURL   string
	origin    string // scheme://host of listURL, for resolving relative hrefs
	linkCache *otter.Cache[string, []string]
}

// New creates a Scraper reading the listing at listURL.
func New(fetcher Fetcher, cfg *config.Config, listURL string) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		cfg:     cfg,
		listURL: listURL,
		origin:  originOf(listURL),
		linkCache: otter.Must(&otter.Options[string, []string]{
			MaximumSize:      cfg.LinkCacheSize,
			ExpiryCalculator: otter.ExpiryWriting[string, []string](cfg.LinkCacheTTL),
		}),
	}
}

// MatchList scrapes the listing page for the given section and returns the
// requested slice of accepted match records. The only error surfaced is a
// list-load failure (*client.NetworkError); unparseable markup degrades to
// an empty result because the source is unreliable by design.
func (s *Scraper) MatchList(ctx context.Context, section types.Section, limit, offset int) ([]types.MatchRecord, error) {
	html, err := s.fetcher.Fetch(ctx, s.listURL)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("list").Inc()
		return nil, err
	}
	metrics.PagesFetched.WithLabelValues("list").Inc()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("scraper: listing markup unparseable: %v", err)
		return []types.MatchRecord{}, nil
	}

	var records []types.MatchRecord
	locator.Locate(doc, section).Each(func(_ int, anchor *goquery.Selection) {
		rec, ok := extract.Record(anchor, s.origin)
		if !ok {
			return
		}
		rec.Sport, rec.League = classify.Classify(rec.Competition, rec.Teams, rec.DetailPageURL)
		records = append(records, rec)
	})

	records = filter.Dedupe(records)
	records = filter.BySection(records, section)

	logger.Debug("scraper: %s section yielded %d records (offset=%d limit=%d)",
		section.DisplayName(), len(records), offset, limit)
	return filter.Paginate(records, offset, limit), nil
}

// StreamLinks returns the validated stream links for a match detail page,
// serving a memoized set when the page was scanned recently. Any failure
// yields an empty list for this record only.
func (s *Scraper) StreamLinks(ctx context.Context, detailURL string) []string {
	if links, ok := s.linkCache.GetIfPresent(detailURL); ok {
		logger.Debug("scraper: link cache hit for %s", detailURL)
		return links
	}

	links := s.scanLinks(ctx, detailURL)
	s.linkCache.Set(detailURL, links)
	return links
}

// RefreshStreamLinks rescans a detail page, bypassing the memo. This is the
// user-triggered retry path; there are no automatic retries.
func (s *Scraper) RefreshStreamLinks(ctx context.Context, detailURL string) []string {
	s.linkCache.Invalidate(detailURL)
	links := s.scanLinks(ctx, detailURL)
	s.linkCache.Set(detailURL, links)
	return links
}

func (s *Scraper) scanLinks(ctx context.Context, detailURL string) []string {
	html, err := s.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("detail").Inc()
		logger.Warn("scraper: detail fetch failed for %s: %v", detailURL, err)
		return []string{}
	}
	metrics.PagesFetched.WithLabelValues("detail").Inc()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("scraper: detail markup unparseable for %s: %v", detailURL, err)
		return []string{}
	}

	links := linkscan.Discover(doc, html)
	logger.Debug("scraper: %d valid stream links for %s", len(links), detailURL)
	return links
}

// ProbeHLS checks a discovered HLS link by parsing its manifest.
func (s *Scraper) ProbeHLS(ctx context.Context, url string) (*linkscan.ProbeResult, error) {
	return linkscan.ProbeHLS(ctx, s.fetcher, url)
}

func originOf(listURL string) string {
	u, err := url.Parse(listURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		logger.Warn("scraper: cannot derive origin from %s", listURL)
		return strings.TrimSuffix(listURL, "/")
	}
	return u.Scheme + "://" + u.Host
}
