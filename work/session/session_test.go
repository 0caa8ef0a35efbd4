package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"

	"livetv-scraper/work/client"
	"livetv-scraper/work/config"
	"livetv-scraper/work/scraper"
	"livetv-scraper/work/types"
)

const listURL = "https://livetv.sx/enx/allupcomingsports/1/"

// stubFetcher serves canned pages and counts fetches per URL.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "", &client.NetworkError{URL: url, StatusCode: 404}
}

func (f *stubFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *stubFetcher) setError(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, url)
		return
	}
	f.errs[url] = err
}

// newFixture wires a session over a stub listing of n fixtures, each with
// one acestream link on its detail page.
func newFixture(t *testing.T, n int) (*Session, *stubFetcher, func()) {
	t.Helper()

	fetcher := newStubFetcher()
	var rows strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&rows, `<tr><td class="time">18:%02d</td><td class="league"><a href="#">Premier League</a></td>`+
			`<td class="evdesc"><a href="/enx/event/%d/">Home %d – Away %d</a></td></tr>`, i, i, i, i)
		fetcher.pages[detailURL(i)] = fmt.Sprintf(
			`<html><body><a href="acestream://feedcafe%02d">Watch</a></body></html>`, i)
	}
	fetcher.pages[listURL] = "<html><body><table>" + rows.String() + "</table></body></html>"

	cfg := &config.Config{
		FetchTimeout:    2 * time.Second,
		InitialPageSize: 2,
		MorePageSize:    2,
		LinkCacheTTL:    time.Minute,
		LinkCacheSize:   64,
	}
	pool, err := ants.NewPool(4)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	sess := New(cfg, scraper.New(fetcher, cfg, listURL), pool)
	return sess, fetcher, pool.Release
}

func detailURL(i int) string {
	return fmt.Sprintf("https://livetv.sx/enx/event/%d/", i)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func linksResolved(v View) bool {
	for _, rec := range v.Records {
		if rec.LinksLoading || rec.StreamLinks == nil {
			return false
		}
	}
	return len(v.Records) > 0
}

func TestVisibleAndLoadMore(t *testing.T) {
	sess, _, release := newFixture(t, 5)
	defer release()
	ctx := context.Background()

	view := sess.Visible(ctx, types.SectionAll)
	if len(view.Records) != 2 {
		t.Fatalf("initial window has %d records, want 2", len(view.Records))
	}
	if view.Records[0].Teams != "Home 1 – Away 1" {
		t.Errorf("first record = %+v", view.Records[0])
	}
	if view.Error != "" {
		t.Errorf("unexpected error on view: %q", view.Error)
	}

	view = sess.LoadMore(ctx, types.SectionAll)
	if len(view.Records) != 4 {
		t.Fatalf("after load more: %d records, want 4", len(view.Records))
	}

	view = sess.LoadMore(ctx, types.SectionAll)
	if len(view.Records) != 5 {
		t.Fatalf("after second load more: %d records, want 5", len(view.Records))
	}

	// corpus exhausted: widening again changes nothing
	view = sess.LoadMore(ctx, types.SectionAll)
	if len(view.Records) != 5 || !view.FullyLoaded {
		t.Fatalf("after exhausting: %d records, fullyLoaded=%v", len(view.Records), view.FullyLoaded)
	}

	waitFor(t, "link resolution", func() bool {
		return linksResolved(sess.Visible(ctx, types.SectionAll))
	})
	view = sess.Visible(ctx, types.SectionAll)
	for i, rec := range view.Records {
		want := fmt.Sprintf("acestream://feedcafe%02d", i+1)
		if len(rec.StreamLinks) != 1 || rec.StreamLinks[0] != want {
			t.Errorf("record %d links = %v, want [%s]", i, rec.StreamLinks, want)
		}
	}
}

func TestRevisitServesCacheWithoutRefetch(t *testing.T) {
	sess, fetcher, release := newFixture(t, 3)
	defer release()
	ctx := context.Background()

	first := sess.Visible(ctx, types.SectionAll)
	waitFor(t, "link resolution", func() bool {
		return linksResolved(sess.Visible(ctx, types.SectionAll))
	})

	detailCalls := make(map[string]int)
	for i := 1; i <= 3; i++ {
		detailCalls[detailURL(i)] = fetcher.callCount(detailURL(i))
	}

	second := sess.Visible(ctx, types.SectionAll)
	if len(second.Records) != len(first.Records) {
		t.Fatalf("revisit changed the window: %d vs %d", len(second.Records), len(first.Records))
	}
	for i := 1; i <= 3; i++ {
		if got := fetcher.callCount(detailURL(i)); got != detailCalls[detailURL(i)] {
			t.Errorf("revisit refetched %s (%d calls)", detailURL(i), got)
		}
	}
}

func TestSectionSwitchPreservesCache(t *testing.T) {
	sess, fetcher, release := newFixture(t, 3)
	defer release()
	ctx := context.Background()

	sess.Visible(ctx, types.SectionAll)
	waitFor(t, "link resolution", func() bool {
		return linksResolved(sess.Visible(ctx, types.SectionAll))
	})
	before := sess.Visible(ctx, types.SectionAll)

	// visiting another section must not disturb the first one's cache
	sess.Visible(ctx, types.SectionFootball)

	after := sess.Visible(ctx, types.SectionAll)
	if len(after.Records) != len(before.Records) {
		t.Fatalf("switch changed record count: %d vs %d", len(after.Records), len(before.Records))
	}
	for i := range after.Records {
		if after.Records[i].DetailPageURL != before.Records[i].DetailPageURL {
			t.Errorf("record %d identity changed across switch", i)
		}
		if len(after.Records[i].StreamLinks) != len(before.Records[i].StreamLinks) {
			t.Errorf("record %d lost its links across switch", i)
		}
	}

	// the detail pages were only ever fetched once each; the second
	// section's link lookups ride the scraper's memo
	waitFor(t, "second section link resolution", func() bool {
		return linksResolved(sess.Visible(ctx, types.SectionFootball))
	})
	for i := 1; i <= 2; i++ {
		if got := fetcher.callCount(detailURL(i)); got != 1 {
			t.Errorf("%s fetched %d times, want 1", detailURL(i), got)
		}
	}
}

func TestRefreshStartsOver(t *testing.T) {
	sess, fetcher, release := newFixture(t, 3)
	defer release()
	ctx := context.Background()

	sess.Visible(ctx, types.SectionAll)
	waitFor(t, "link resolution", func() bool {
		return linksResolved(sess.Visible(ctx, types.SectionAll))
	})
	listCalls := fetcher.callCount(listURL)

	sess.Refresh(types.SectionAll)

	view := sess.Visible(ctx, types.SectionAll)
	if len(view.Records) != 2 {
		t.Fatalf("post-refresh window has %d records, want 2", len(view.Records))
	}
	if fetcher.callCount(listURL) <= listCalls {
		t.Error("refresh did not trigger a fresh listing fetch")
	}
}

func TestRefreshMatchLinksBypassesMemo(t *testing.T) {
	sess, fetcher, release := newFixture(t, 2)
	defer release()
	ctx := context.Background()

	sess.Visible(ctx, types.SectionAll)
	waitFor(t, "link resolution", func() bool {
		return linksResolved(sess.Visible(ctx, types.SectionAll))
	})
	url := detailURL(1)
	before := fetcher.callCount(url)

	view := sess.RefreshMatchLinks(ctx, types.SectionAll, url)
	if got := fetcher.callCount(url); got != before+1 {
		t.Errorf("detail fetched %d times, want %d", got, before+1)
	}
	for _, rec := range view.Records {
		if rec.DetailPageURL == url {
			if len(rec.StreamLinks) != 1 || rec.LinksLoading {
				t.Errorf("refreshed record = %+v", rec)
			}
		}
	}
}

func TestSearchCoversUnpaginatedCorpus(t *testing.T) {
	sess, _, release := newFixture(t, 6)
	defer release()
	ctx := context.Background()

	view := sess.Visible(ctx, types.SectionAll)
	if len(view.Records) != 2 {
		t.Fatalf("window has %d records, want 2", len(view.Records))
	}

	// the background scan fills the corpus past the visible window
	waitFor(t, "background scan", func() bool {
		return sess.Visible(ctx, types.SectionAll).FullyLoaded
	})

	result := sess.Search(ctx, types.SectionAll, "home 6")
	if len(result.Records) != 1 || result.Records[0].DetailPageURL != detailURL(6) {
		t.Fatalf("search = %v", result.Records)
	}

	// the visible window is untouched by searching
	if got := sess.Visible(ctx, types.SectionAll); len(got.Records) != 2 {
		t.Errorf("search disturbed the window: %d records", len(got.Records))
	}
}

func TestSetFilters(t *testing.T) {
	sess, fetcher, release := newFixture(t, 3)
	defer release()
	ctx := context.Background()

	// one basketball fixture among the football ones
	fetcher.mu.Lock()
	fetcher.pages[listURL] = `<html><body><table>` +
		`<tr><td class="time">18:01</td><td class="league"><a href="#">Premier League</a></td><td class="evdesc"><a href="/enx/event/1/">Home 1 – Away 1</a></td></tr>` +
		`<tr><td class="time">18:02</td><td class="league"><a href="#">NBA</a></td><td class="evdesc"><a href="/enx/event/2/">Lakers – Celtics</a></td></tr>` +
		`<tr><td class="time">18:03</td><td class="league"><a href="#">Premier League</a></td><td class="evdesc"><a href="/enx/event/3/">Home 3 – Away 3</a></td></tr>` +
		`</table></body></html>`
	fetcher.mu.Unlock()

	view := sess.SetFilters(ctx, types.SectionAll, "Basketball", "")
	if len(view.Records) != 1 || view.Records[0].Sport != "Basketball" {
		t.Fatalf("filtered view = %v", view.Records)
	}

	// clearing restores the corpus, initial page at a time
	view = sess.SetFilters(ctx, types.SectionAll, "", "")
	if len(view.Records) != 2 {
		t.Fatalf("cleared view has %d records, want 2", len(view.Records))
	}
}

func TestListLoadErrorSurfacedAndRetried(t *testing.T) {
	sess, fetcher, release := newFixture(t, 3)
	defer release()
	ctx := context.Background()

	fetcher.setError(listURL, &client.NetworkError{URL: listURL, StatusCode: 503})

	view := sess.Visible(ctx, types.SectionAll)
	if view.Error == "" {
		t.Fatal("list-load failure not surfaced on the view")
	}
	if len(view.Records) != 0 {
		t.Fatalf("failed load produced %d records", len(view.Records))
	}

	// the retry is just asking again once the site recovers
	fetcher.setError(listURL, nil)
	view = sess.LoadMore(ctx, types.SectionAll)
	if view.Error != "" {
		t.Fatalf("error sticky after recovery: %q", view.Error)
	}
	if len(view.Records) != 2 {
		t.Fatalf("recovered view has %d records, want 2", len(view.Records))
	}
}
