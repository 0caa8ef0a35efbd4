package linkscan

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/grafana/regexp"

	"livetv-scraper/work/logger"
	"livetv-scraper/work/metrics"
)

// Inline-script and raw-markup URL patterns. The script pattern is broad on
// purpose: player bootstrap code hides manifests behind stream/live/watch
// path words as often as behind a .m3u8 extension.
var (
	scriptURLRe  = regexp.MustCompile(`(?i)https?://[^\s"'<>]+(?:\.m3u8|stream|live|watch|player)`)
	acestreamRe  = regexp.MustCompile(`acestream://[a-zA-Z0-9]+`)
	hlsURLRe     = regexp.MustCompile(`(?i)https?://[^\s"'<>]+\.m3u8`)
	rtmpURLRe    = regexp.MustCompile(`(?i)rtmps?://[^\s"'<>]+`)
	webplayerRe  = regexp.MustCompile(`(?i)(?:https?:)?//[^\s"'<>]+webplayer[^\s"'<>]*`)
	iframeWordRe = regexp.MustCompile(`(?i)stream|live|player|embed`)
)

// strategy is one independent link detector over a detail page. Detectors
// never see each other's results and a failure in one must not suppress the
// rest, so each runs behind its own recover guard.
type strategy struct {
	name string
	scan func(doc *goquery.Document, raw string) []string
}

var strategies = []strategy{
	{"acestream-anchors", func(doc *goquery.Document, _ string) []string {
		return anchorHrefs(doc, "a[href*='acestream://']")
	}},
	{"hls-anchors", func(doc *goquery.Document, _ string) []string {
		return anchorHrefs(doc, "a[href*='.m3u8']")
	}},
	{"rtmp-anchors", func(doc *goquery.Document, _ string) []string {
		return anchorHrefs(doc, "a[href^='rtmp://'], a[href^='rtmps://']")
	}},
	{"video-host-anchors", func(doc *goquery.Document, _ string) []string {
		return anchorHrefs(doc, "a[href*='youtube.com/watch'], a[href*='youtu.be/'], a[href*='twitch.tv/']")
	}},
	{"webplayer-anchors", func(doc *goquery.Document, _ string) []string {
		var out []string
		for _, href := range anchorHrefs(doc, "a[href*='webplayer']") {
			out = append(out, normalizeProtocolRelative(href))
		}
		return out
	}},
	{"inline-scripts", func(doc *goquery.Document, _ string) []string {
		var out []string
		doc.Find("script").Each(func(_ int, script *goquery.Selection) {
			out = append(out, scriptURLRe.FindAllString(script.Text(), -1)...)
		})
		return out
	}},
	{"iframes", func(doc *goquery.Document, _ string) []string {
		var out []string
		doc.Find("iframe[src]").Each(func(_ int, frame *goquery.Selection) {
			src, _ := frame.Attr("src")
			if src != "" && iframeWordRe.MatchString(src) {
				out = append(out, src)
			}
		})
		return out
	}},
}

// Discover scans a detail page for playable stream URLs across anchors,
// inline scripts, and iframes. Only when every detector comes back empty is
// the same regex family run over visible text and raw markup, because the
// raw pass is noisy enough to drown structured hits. Results are
// deduplicated in discovery order and validated; malformed URLs are dropped,
// never repaired.
func Discover(doc *goquery.Document, raw string) []string {
	var found []string
	for _, strat := range strategies {
		found = append(found, runStrategy(strat, doc, raw)...)
	}

	if len(found) == 0 {
		found = fallbackScan(doc, raw)
	}

	var valid []string
	for _, link := range dedupe(found) {
		if !IsValidStreamURL(link) {
			logger.Debug("linkscan: filtered out invalid URL: %s", link)
			metrics.LinksRejected.Inc()
			continue
		}
		metrics.LinksDiscovered.WithLabelValues(string(KindOf(link))).Inc()
		valid = append(valid, link)
	}
	return valid
}

// runStrategy executes a single detector behind a recover guard so a panic
// on pathological markup costs only that detector's results.
func runStrategy(strat strategy, doc *goquery.Document, raw string) (links []string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("linkscan: %s strategy panicked: %v", strat.name, r)
			links = nil
		}
	}()
	return strat.scan(doc, raw)
}

// fallbackScan applies the stream URL regex family to the visible page text
// and the raw markup. Raw-markup hits are normalized because sites bury
// protocol-relative webplayer URLs in commented-out blocks.
func fallbackScan(doc *goquery.Document, raw string) []string {
	var out []string

	bodyText := doc.Find("body").Text()
	out = append(out, acestreamRe.FindAllString(bodyText, -1)...)
	out = append(out, hlsURLRe.FindAllString(bodyText, -1)...)
	out = append(out, rtmpURLRe.FindAllString(bodyText, -1)...)

	for _, re := range []*regexp.Regexp{acestreamRe, hlsURLRe, rtmpURLRe, webplayerRe} {
		for _, link := range re.FindAllString(raw, -1) {
			out = append(out, normalizeProtocolRelative(link))
		}
	}
	return out
}

func anchorHrefs(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && strings.TrimSpace(href) != "" {
			out = append(out, strings.TrimSpace(href))
		}
	})
	return out
}

// normalizeProtocolRelative turns "//host/path" into explicit HTTPS.
func normalizeProtocolRelative(link string) string {
	if strings.HasPrefix(link, "//") {
		return "https:" + link
	}
	return link
}

func dedupe(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}
