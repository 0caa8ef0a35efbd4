package locator

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"livetv-scraper/work/types"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return doc
}

func TestLocateCascade(t *testing.T) {
	cases := []struct {
		name string
		html string
		want int
	}{
		{
			name: "tight event path wins",
			html: `<a href="/enx/event/1/">A</a><a href="/enx/event/2/">B</a><a href="/about">C</a>`,
			want: 2,
		},
		{
			name: "falls back to event segment",
			html: `<a href="/de/event/3/">A</a><a href="/about">B</a>`,
			want: 1,
		},
		{
			name: "falls back to any event mention",
			html: `<a href="/eventlist?id=4">A</a>`,
			want: 1,
		},
		{
			name: "no event links at all",
			html: `<a href="/about">A</a><a href="/contact">B</a>`,
			want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			anchors := Locate(docFromHTML(t, tc.html), types.SectionAll)
			if anchors.Length() != tc.want {
				t.Errorf("got %d anchors, want %d", anchors.Length(), tc.want)
			}
		})
	}
}

func TestLocateCascadeDoesNotMixTiers(t *testing.T) {
	// when the tight selector matches, looser tiers must not add anchors
	html := `<a href="/enx/event/1/">A</a><a href="/other/event/2/">B</a>`
	anchors := Locate(docFromHTML(t, html), types.SectionAll)
	if anchors.Length() != 1 {
		t.Fatalf("got %d anchors, want 1", anchors.Length())
	}
	href, _ := anchors.First().Attr("href")
	if href != "/enx/event/1/" {
		t.Errorf("anchor = %q, want the tight-tier match", href)
	}
}

func TestLocateLiveSectionNarrowing(t *testing.T) {
	html := `
		<div id="upcoming">
			<a href="/enx/event/1/">Inside</a>
		</div>
		<a href="/enx/event/2/">Outside</a>`

	anchors := Locate(docFromHTML(t, html), types.SectionLive)
	if anchors.Length() != 1 {
		t.Fatalf("got %d anchors, want 1 (container scope)", anchors.Length())
	}
	href, _ := anchors.First().Attr("href")
	if href != "/enx/event/1/" {
		t.Errorf("anchor = %q, want the in-container link", href)
	}
}

func TestLocateLiveSectionContainerMissing(t *testing.T) {
	// container absent: the live section degrades to the full document
	html := `<a href="/enx/event/1/">A</a><a href="/enx/event/2/">B</a>`
	anchors := Locate(docFromHTML(t, html), types.SectionLive)
	if anchors.Length() != 2 {
		t.Errorf("got %d anchors, want 2 (full-document fallback)", anchors.Length())
	}
}

func TestLocateSportSectionUsesFullDocument(t *testing.T) {
	html := `
		<div id="upcoming"><a href="/enx/event/1/">A</a></div>
		<a href="/enx/event/2/">B</a>`
	anchors := Locate(docFromHTML(t, html), types.SectionFootball)
	if anchors.Length() != 2 {
		t.Errorf("got %d anchors, want 2 (filtering is deferred, not scoped)", anchors.Length())
	}
}
