package locator

import (
	"github.com/PuerkitoBio/goquery"

	"livetv-scraper/work/logger"
	"livetv-scraper/work/types"
)

// Strategy is one attempt at finding match-detail anchors. Strategies are
// tried in order and the first one returning any anchors wins; keeping them
// as data lets new layouts be handled by appending an entry.
type Strategy struct {
	Name     string
	Selector string
}

// cascade runs from the most specific event-path shape down to any link
// mentioning "event" at all. The site reshuffles its markup often enough
// that the tighter selectors go empty for days at a time.
var cascade = []Strategy{
	{Name: "event-path", Selector: "a[href*='/enx/event/']"},
	{Name: "event-segment", Selector: "a[href*='/event/']"},
	{Name: "event-word", Selector: "a[href*='event']"},
}

// Locate finds anchors plausibly pointing at match detail pages within the
// section's scope of doc. A nil-length selection means no strategy matched;
// extraction then has nothing to do and the caller degrades to an empty
// result set.
func Locate(doc *goquery.Document, section types.Section) *goquery.Selection {
	scope := narrow(doc, section)

	for _, strat := range cascade {
		anchors := scope.Find(strat.Selector)
		if anchors.Length() > 0 {
			logger.Debug("locator: %d anchors via %s strategy in %s section",
				anchors.Length(), strat.Name, section.DisplayName())
			return anchors
		}
	}

	// Diagnostic only: a page full of links none of which look like events
	// usually means a layout change worth logging, not extracting.
	all := scope.Find("a[href]")
	logger.Warn("locator: no event anchors found in %s section (%d links total)",
		section.DisplayName(), all.Length())
	if all.Length() > 0 {
		all.Slice(0, min(all.Length(), 10)).Each(func(_ int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			logger.Debug("locator: sample link %s", href)
		})
	}
	return doc.Selection.Slice(0, 0)
}

// narrow constrains the document to the section's named container when one
// is configured and present; otherwise the full document is used. Sport
// sections stay on the full document so pagination offsets remain stable,
// with filtering deferred to the filter stage.
func narrow(doc *goquery.Document, section types.Section) *goquery.Selection {
	container := section.Container()
	if container == "" {
		return doc.Selection
	}

	scope := doc.Find(container).First()
	if scope.Length() == 0 {
		logger.Debug("locator: container %s missing, falling back to full document", container)
		return doc.Selection
	}
	return scope
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
