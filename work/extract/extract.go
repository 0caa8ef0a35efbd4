package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/grafana/regexp"

	"livetv-scraper/work/logger"
	"livetv-scraper/work/metrics"
	"livetv-scraper/work/types"
)

// Field selector cascades, tried in order with the first non-trivial text
// winning. The site alternates between class-hinted cells and bare
// positional table cells, so each field carries both shapes.
var (
	timeSelectors = []string{
		"td.time", ".time", "[class*='time']", "td:first-child",
	}
	teamSelectors = []string{
		"td.evdesc", ".evdesc", ".event-title", ".event-desc",
		"[class*='event']", "[class*='team']", "td:nth-child(3)",
	}
	competitionSelectors = []string{
		"td.league > a", ".league", ".competition", "[class*='league']", "td:nth-child(2)",
	}
)

// Swap-correction heuristics. Threshold values (10/15) are tunable
// defaults, not load-bearing constants.
var (
	parenHintRe    = regexp.MustCompile(`\([^)]+\)`)
	dateAtRe       = regexp.MustCompile(`\d{1,2}\s+\w+\s+at`)
	leagueVocabRe  = regexp.MustCompile(`(?i)\b(ncaa|nba|nfl|mlb|nhl|premier|liga|serie|bundesliga|league|cup|championship|division|conference|botola|pro|first|elite)\b`)
	teamSepScoreRe = regexp.MustCompile(`[–—-]|\bvs?\.?\b|\d+:\d+`)
	teamSepRe      = regexp.MustCompile(`[–—-]|\bvs?\.?\b`)

	clockRe     = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)
	dateClockRe = regexp.MustCompile(`\d{1,2}\s+\w+\s+at\s+(\d{1,2}:\d{2})`)
)

// Record derives a match record from one candidate anchor. The origin
// ("scheme://host") resolves relative hrefs. Returns false when the cleaned
// team text is too short to be a real fixture; candidates are dropped, never
// errored, because the markup is unreliable by design.
func Record(anchor *goquery.Selection, origin string) (types.MatchRecord, bool) {
	href, _ := anchor.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return types.MatchRecord{}, false
	}
	detailURL := resolveURL(href, origin)

	row := rowContext(anchor)

	timeText := firstText(row, timeSelectors)
	teams := firstText(row, teamSelectors)
	competition := firstText(row, competitionSelectors)

	// The first anchor in the row often carries the fixture when the cell
	// cascade comes back with noise.
	if len(teams) < 5 {
		teams = strings.TrimSpace(row.Find("a").First().Text())
	}

	teams, competition = swapCorrect(teams, competition)

	if timeText == "" {
		timeText = recoverTime(teams + " " + competition)
	}

	if len(teams) < 5 {
		teams = strings.TrimSpace(anchor.Text())
	}
	if len(teams) < 5 {
		teams = parentText(anchor)
	}

	teams = CleanTeams(teams, competition)

	if len(teams) <= 3 {
		logger.Debug("extract: dropped candidate %s, teams too short: %q", detailURL, teams)
		metrics.RecordsDropped.Inc()
		return types.MatchRecord{}, false
	}

	metrics.MatchesExtracted.Inc()
	return types.MatchRecord{
		Time:          timeText,
		Teams:         teams,
		Competition:   competition,
		DetailPageURL: detailURL,
	}, true
}

// rowContext finds the enclosing context to read fields from: the nearest
// table row, else the immediate parent, else the anchor itself.
func rowContext(anchor *goquery.Selection) *goquery.Selection {
	if row := anchor.Closest("tr"); row.Length() > 0 {
		return row
	}
	if parent := anchor.Parent(); parent.Length() > 0 {
		return parent
	}
	return anchor
}

// firstText returns the first non-empty trimmed text produced by the
// selector cascade.
func firstText(scope *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(scope.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// swapCorrect fixes rows where the team and competition cells came back
// transposed: teams reading like a league label while competition carries
// the separator-joined fixture text.
func swapCorrect(teams, competition string) (string, string) {
	if teams == "" || competition == "" {
		return teams, competition
	}

	teamsLooksLikeLeague := len(teams) < 10 ||
		parenHintRe.MatchString(teams) ||
		dateAtRe.MatchString(teams) ||
		leagueVocabRe.MatchString(teams)

	competitionLooksLikeTeams := len(competition) > 15 ||
		teamSepScoreRe.MatchString(competition) ||
		len(teamSepRe.Split(competition, -1)) == 2

	if teamsLooksLikeLeague && competitionLooksLikeTeams {
		logger.Debug("extract: swapped fields, teams=%q competition=%q", competition, teams)
		return competition, teams
	}
	return teams, competition
}

// recoverTime pulls a kickoff time out of free text when no structural time
// cell was found: a bare HH:MM first, then a "<day> <month> at HH:MM" shape.
func recoverTime(combined string) string {
	if m := clockRe.FindStringSubmatch(combined); m != nil {
		return m[1]
	}
	if m := dateClockRe.FindStringSubmatch(combined); m != nil {
		return m[1]
	}
	return ""
}

// parentText walks up to three ancestors looking for own-text long enough
// to be a fixture description.
func parentText(anchor *goquery.Selection) string {
	parent := anchor.Parent()
	for attempts := 0; attempts < 3 && parent.Length() > 0; attempts++ {
		if text := ownText(parent); len(text) > 5 {
			return text
		}
		parent = parent.Parent()
	}
	return ""
}

// ownText collects the direct text nodes of a selection, excluding child
// element text.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return strings.TrimSpace(b.String())
}

// resolveURL makes a candidate href absolute against the listing origin.
func resolveURL(href, origin string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return origin + href
	default:
		return origin + "/" + href
	}
}
