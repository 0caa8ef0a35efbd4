package session

import (
	"context"

	"github.com/panjf2000/ants/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"livetv-scraper/work/cache"
	"livetv-scraper/work/config"
	"livetv-scraper/work/logger"
	"livetv-scraper/work/metrics"
	"livetv-scraper/work/scraper"
	"livetv-scraper/work/types"
)

// View is the plain-data snapshot handed to the presentation layer: the
// visible records with loading flags plus the derived filter label sets.
type View struct {
	Section     string              `json:"section"`
	State       string              `json:"state"`
	Records     []types.MatchRecord `json:"records"`
	Sports      []string            `json:"sports"`
	Leagues     []string            `json:"leagues"`
	FullyLoaded bool                `json:"fullyLoaded"`
	Error       string              `json:"error,omitempty"`
}

// Session orchestrates incremental loading over the scraping pipeline. It
// exclusively owns the per-section caches; pipeline stages stay pure. Each
// section activation also claims one background full-corpus scan so search
// can cover matches that pagination has not reached yet.
type Session struct {
	cfg     *config.Config
	scraper *scraper.Scraper
	pool    *ants.Pool
	store   *cache.Store
	errs    *xsync.MapOf[string, string] // per-section last list-load error
}

// New creates a Session sharing the given link-fetch worker pool.
func New(cfg *config.Config, scr *scraper.Scraper, pool *ants.Pool) *Session {
	return &Session{
		cfg:     cfg,
		scraper: scr,
		pool:    pool,
		store:   cache.NewStore(),
		errs:    xsync.NewMapOf[string, string](),
	}
}

// Visible returns the section's current view, activating the section on
// first visit (which loads the initial window and starts the background
// scan). Revisiting a section serves the cached records unchanged.
func (s *Session) Visible(ctx context.Context, section types.Section) View {
	c := s.activate(ctx, section)
	if c.VisibleCount() == 0 {
		s.grow(ctx, c, section, s.cfg.InitialPageSize)
	}
	return s.view(c, section)
}

// LoadMore widens the section's visible window by one page and triggers
// link fetches for the newly exposed records.
func (s *Session) LoadMore(ctx context.Context, section types.Section) View {
	c := s.activate(ctx, section)
	n := s.cfg.MorePageSize
	if c.VisibleCount() == 0 {
		n = s.cfg.InitialPageSize
	}
	s.grow(ctx, c, section, n)
	return s.view(c, section)
}

// Refresh discards the section's cache entirely; the next visit starts
// from Empty. In-flight link fetches keep writing to the dropped cache
// object, which nothing reads anymore.
func (s *Session) Refresh(section types.Section) {
	s.store.Drop(section)
	s.errs.Delete(section.ID())
	logger.Info("session: refreshed %s section", section.DisplayName())
}

// Search returns every cached record matching the query, bypassing
// pagination. Coverage grows as the background scan fills the corpus.
func (s *Session) Search(ctx context.Context, section types.Section, query string) View {
	c := s.activate(ctx, section)
	v := s.view(c, section)
	v.Records = c.Search(query)
	return v
}

// SetFilters activates a sport/league filter for the section, forcing a
// one-time full-corpus load when the section is not fully loaded yet so the
// filtered list is complete rather than an artifact of pagination.
func (s *Session) SetFilters(ctx context.Context, section types.Section, sport, league string) View {
	c := s.activate(ctx, section)
	if !c.FullyLoaded() {
		s.fullLoad(ctx, c, section)
	}
	c.SetFilters(sport, league)
	s.grow(ctx, c, section, s.cfg.InitialPageSize)
	return s.view(c, section)
}

// RefreshMatchLinks rescans a single match's detail page, bypassing the
// link memo. This is the retry path for a failed or stale link set.
func (s *Session) RefreshMatchLinks(ctx context.Context, section types.Section, detailURL string) View {
	c := s.activate(ctx, section)
	c.SetLinksLoading(detailURL, true)
	links := s.scraper.RefreshStreamLinks(ctx, detailURL)
	c.SetLinks(detailURL, links)
	return s.view(c, section)
}

// activate returns the section's cache, creating it and claiming the
// background full-corpus scan on first visit.
func (s *Session) activate(ctx context.Context, section types.Section) *cache.SectionCache {
	c, created := s.store.GetOrCreate(section)
	if created && c.StartScanOnce() {
		go s.backgroundScan(c, section)
	}
	return c
}

// grow makes sure enough of the corpus is fetched to widen the visible
// window by n, widens it, and dispatches link fetches for the new batch.
func (s *Session) grow(ctx context.Context, c *cache.SectionCache, section types.Section, n int) {
	target := c.VisibleCount() + n

	for c.FilteredCount() < target && !c.FullyLoaded() {
		pageSize := s.cfg.MorePageSize
		if pageSize < n {
			pageSize = n
		}
		batch, err := s.scraper.MatchList(ctx, section, pageSize, c.TotalFetched())
		if err != nil {
			// list-load failure: surface on the view, keep what we have
			s.errs.Store(section.ID(), err.Error())
			logger.Error("session: list load failed for %s: %v", section.DisplayName(), err)
			break
		}
		s.errs.Delete(section.ID())
		c.AppendBatch(batch, pageSize)
	}

	newlyVisible := c.GrowVisible(n)
	s.fetchLinksForBatch(c, newlyVisible)
}

// fullLoad synchronously replaces the working set with the complete corpus.
func (s *Session) fullLoad(ctx context.Context, c *cache.SectionCache, section types.Section) {
	full, err := s.scraper.MatchList(ctx, section, 0, 0)
	if err != nil {
		s.errs.Store(section.ID(), err.Error())
		logger.Error("session: full load failed for %s: %v", section.DisplayName(), err)
		return
	}
	s.errs.Delete(section.ID())
	c.MergeFull(full)
}

// backgroundScan runs the one unpaginated scan per section activation. Its
// merge preserves links resolved meanwhile; a failure only means search
// stays bounded by what pagination has fetched.
func (s *Session) backgroundScan(c *cache.SectionCache, section types.Section) {
	metrics.BackgroundScans.Inc()
	defer metrics.BackgroundScans.Dec()

	ctx, cancel := context.WithTimeout(context.Background(), 2*s.cfg.FetchTimeout)
	defer cancel()

	full, err := s.scraper.MatchList(ctx, section, 0, 0)
	if err != nil {
		logger.Warn("session: background scan failed for %s: %v", section.DisplayName(), err)
		return
	}
	c.MergeFull(full)
	logger.Info("session: background scan merged %d records into %s section",
		len(full), section.DisplayName())
}

// fetchLinksForBatch dispatches independent link fetches for each record in
// the batch that still needs them. Results are applied one record at a
// time; a failed fetch yields an empty list for that record only and never
// aborts its siblings.
func (s *Session) fetchLinksForBatch(c *cache.SectionCache, batch []types.MatchRecord) {
	for _, rec := range batch {
		url := rec.DetailPageURL
		if !c.NeedsLinks(url) {
			continue
		}
		c.SetLinksLoading(url, true)

		task := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*s.cfg.FetchTimeout)
			defer cancel()
			c.SetLinks(url, s.scraper.StreamLinks(ctx, url))
		}
		if err := s.pool.Submit(task); err != nil {
			logger.Warn("session: worker pool rejected link fetch for %s: %v", url, err)
			c.SetLinksLoading(url, false)
		}
	}
}

// view assembles the plain-data snapshot for a section.
func (s *Session) view(c *cache.SectionCache, section types.Section) View {
	sports, leagues := c.Labels()
	v := View{
		Section:     section.ID(),
		State:       c.State().String(),
		Records:     c.VisibleRecords(),
		Sports:      sports,
		Leagues:     leagues,
		FullyLoaded: c.FullyLoaded(),
	}
	if msg, ok := s.errs.Load(section.ID()); ok {
		v.Error = msg
	}
	return v
}
