package cache

import (
	"sort"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"livetv-scraper/work/types"
)

// State is the load progression of a section cache.
type State int

const (
	Empty State = iota
	PartiallyLoaded
	FullyLoaded
)

func (s State) String() string {
	switch s {
	case PartiallyLoaded:
		return "partial"
	case FullyLoaded:
		return "full"
	default:
		return "empty"
	}
}

// SectionCache is the per-section working set: every record fetched so far
// in first-seen order, the visible-window size, link resolution bookkeeping,
// and the active filters. All access goes through the methods; the mutex
// keeps each update atomic with respect to readers of the visible list.
type SectionCache struct {
	mu           sync.RWMutex
	records      []types.MatchRecord
	index        map[string]int      // detail URL -> position in records
	resolved     map[string]struct{} // detail URLs whose links have been fetched, even when empty
	visible      int
	totalFetched int
	fullyLoaded  bool
	sportFilter  string
	leagueFilter string
	scanStarted  bool
}

// NewSectionCache creates an empty cache for a freshly activated section.
func NewSectionCache() *SectionCache {
	return &SectionCache{
		index:    make(map[string]int),
		resolved: make(map[string]struct{}),
	}
}

// State reports the cache's load progression.
func (c *SectionCache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.fullyLoaded:
		return FullyLoaded
	case len(c.records) > 0 || c.totalFetched > 0:
		return PartiallyLoaded
	default:
		return Empty
	}
}

// AppendBatch merges an incremental fetch into the working set. Records
// already present keep their resolved links; new records append in order.
// requested is the page size asked for, used to advance the fetch offset
// even when overlapping records were deduplicated away.
func (c *SectionCache) AppendBatch(batch []types.MatchRecord, requested int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range batch {
		if _, exists := c.index[rec.DetailPageURL]; exists {
			continue
		}
		c.index[rec.DetailPageURL] = len(c.records)
		c.records = append(c.records, rec)
	}
	c.totalFetched += requested
	if len(batch) < requested {
		c.fullyLoaded = true
	}
}

// MergeFull replaces the working set with a full-corpus scan result,
// preserving already-resolved stream links and loading flags for records
// present in both. The full set supersedes incremental ordering.
func (c *SectionCache) MergeFull(full []types.MatchRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := make([]types.MatchRecord, 0, len(full))
	index := make(map[string]int, len(full))
	for _, rec := range full {
		if _, dup := index[rec.DetailPageURL]; dup {
			continue
		}
		if pos, ok := c.index[rec.DetailPageURL]; ok {
			old := c.records[pos]
			rec.StreamLinks = old.StreamLinks
			rec.LinksLoading = old.LinksLoading
		}
		index[rec.DetailPageURL] = len(merged)
		merged = append(merged, rec)
	}
	c.records = merged
	c.index = index
	c.fullyLoaded = true
	if c.visible > len(merged) {
		c.visible = len(merged)
	}
}

// TotalFetched returns the cumulative fetch offset for pagination.
func (c *SectionCache) TotalFetched() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalFetched
}

// FullyLoaded reports whether the complete corpus is present.
func (c *SectionCache) FullyLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fullyLoaded
}

// SetFilters stores the active sport/league filters and resets the visible
// window so the list rebuilds from the top.
func (c *SectionCache) SetFilters(sport, league string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sportFilter = sport
	c.leagueFilter = league
	c.visible = 0
}

// Filters returns the active sport and league filters.
func (c *SectionCache) Filters() (sport, league string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sportFilter, c.leagueFilter
}

// GrowVisible widens the visible window by n filtered records and returns
// the newly exposed batch. Records whose links are already resolved or in
// flight are included in the batch but flagged by NeedsLinks.
func (c *SectionCache) GrowVisible(n int) []types.MatchRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filteredLocked()
	next := c.visible + n
	if next > len(filtered) {
		next = len(filtered)
	}
	if next <= c.visible {
		return nil
	}
	batch := make([]types.MatchRecord, next-c.visible)
	copy(batch, filtered[c.visible:next])
	c.visible = next
	return batch
}

// VisibleCount returns the current visible-window size.
func (c *SectionCache) VisibleCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visible
}

// FilteredCount returns how many records pass the active filters.
func (c *SectionCache) FilteredCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.filteredLocked())
}

// VisibleRecords returns a copy of the current visible window.
func (c *SectionCache) VisibleRecords() []types.MatchRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	filtered := c.filteredLocked()
	end := c.visible
	if end > len(filtered) {
		end = len(filtered)
	}
	out := make([]types.MatchRecord, end)
	copy(out, filtered[:end])
	return out
}

// Search returns every record whose concatenated text contains the query,
// case-insensitively, bypassing the visible window entirely. The result is
// bounded only by how much of the corpus has been fetched so far.
func (c *SectionCache) Search(query string) []types.MatchRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := strings.ToLower(query)
	var out []types.MatchRecord
	for _, rec := range c.filteredLocked() {
		if strings.Contains(strings.ToLower(rec.CombinedText()+" "+rec.Time), q) {
			out = append(out, rec)
		}
	}
	return out
}

// NeedsLinks reports whether a record still needs a link fetch: not yet
// resolved and not currently loading.
func (c *SectionCache) NeedsLinks(detailURL string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, done := c.resolved[detailURL]; done {
		return false
	}
	pos, ok := c.index[detailURL]
	return ok && !c.records[pos].LinksLoading
}

// SetLinksLoading flags a record's link fetch as in flight.
func (c *SectionCache) SetLinksLoading(detailURL string, loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos, ok := c.index[detailURL]; ok {
		c.records[pos].LinksLoading = loading
	}
}

// SetLinks stores a record's stream links wholesale and marks it resolved.
// Unknown URLs are ignored, which is what makes stale in-flight results
// from a superseded working set harmless.
func (c *SectionCache) SetLinks(detailURL string, links []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos, ok := c.index[detailURL]
	if !ok {
		return
	}
	c.records[pos].StreamLinks = links
	c.records[pos].LinksLoading = false
	c.resolved[detailURL] = struct{}{}
}

// StartScanOnce claims the section's single background full-corpus scan.
// Returns false when a scan already ran or is running.
func (c *SectionCache) StartScanOnce() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scanStarted {
		return false
	}
	c.scanStarted = true
	return true
}

// Labels returns the distinct sport and league values across the working
// set, sorted, for the front end's filter menus.
func (c *SectionCache) Labels() (sports, leagues []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sportSet := map[string]struct{}{}
	leagueSet := map[string]struct{}{}
	for _, rec := range c.records {
		if rec.Sport != "" {
			sportSet[rec.Sport] = struct{}{}
		}
		if rec.League != "" {
			leagueSet[rec.League] = struct{}{}
		}
	}
	for s := range sportSet {
		sports = append(sports, s)
	}
	for l := range leagueSet {
		leagues = append(leagues, l)
	}
	sort.Strings(sports)
	sort.Strings(leagues)
	return sports, leagues
}

// filteredLocked applies the active sport/league filters. Callers hold the
// lock.
func (c *SectionCache) filteredLocked() []types.MatchRecord {
	if c.sportFilter == "" && c.leagueFilter == "" {
		return c.records
	}
	out := make([]types.MatchRecord, 0, len(c.records))
	for _, rec := range c.records {
		if c.sportFilter != "" && rec.Sport != c.sportFilter {
			continue
		}
		if c.leagueFilter != "" && rec.League != c.leagueFilter {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Store maps section ids to their caches. Sessions own exactly one Store;
// switching sections keeps the old cache warm until an explicit refresh.
type Store struct {
	caches *xsync.MapOf[string, *SectionCache]
}

// NewStore creates an empty section cache store.
func NewStore() *Store {
	return &Store{caches: xsync.NewMapOf[string, *SectionCache]()}
}

// GetOrCreate returns the cache for a section, creating it on first visit.
// The second return reports whether this call created it.
func (st *Store) GetOrCreate(section types.Section) (*SectionCache, bool) {
	fresh := NewSectionCache()
	actual, loaded := st.caches.LoadOrStore(section.ID(), fresh)
	return actual, !loaded
}

// Peek returns the cache for a section if one exists.
func (st *Store) Peek(section types.Section) (*SectionCache, bool) {
	return st.caches.Load(section.ID())
}

// Drop discards a section's cache; the next visit starts from Empty.
func (st *Store) Drop(section types.Section) {
	st.caches.Delete(section.ID())
}
