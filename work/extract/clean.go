package extract

import (
	"strings"

	"github.com/grafana/regexp"
)

// cleanStep is one (pattern, replacement) rewrite in the team-name cleanup
// pipeline. Steps run left to right; ordering matters because later steps
// assume the date/time debris is already gone.
type cleanStep struct {
	re   *regexp.Regexp
	repl string
}

var cleanSteps = []cleanStep{
	// date shapes: "14 September at", "14 September 2025 at", "September 14 at"
	{regexp.MustCompile(`(?i)\d{1,2}\s+\w+\s+\d{4}\s+at\s*`), ""},
	{regexp.MustCompile(`(?i)\d{1,2}\s+\w+\s+at\s*`), ""},
	{regexp.MustCompile(`(?i)\w+\s+\d{1,2}\s+at\s*`), ""},
	{regexp.MustCompile(`(?i)at\s+\d{1,2}:\d{2}`), ""},
	// bare clock times
	{regexp.MustCompile(`\d{1,2}:\d{2}`), ""},
	// parenthetical league/country hints
	{regexp.MustCompile(`\([^)]*\)`), ""},
	// noise tokens; word-bounded so team names like "Liverpool" survive
	{regexp.MustCompile(`(?i)\b(live|today|tomorrow|now)\b`), ""},
	{regexp.MustCompile(`\b(GMT|UTC|CET|EST|PST)\b`), ""},
	// trailing zero-score leftovers like " 0:0"
	{regexp.MustCompile(`\s+0:\d+\s*$`), ""},
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	edgePunctRe  = regexp.MustCompile(`^[|:,.;\s]+|[|:,.;\s]+$`)
)

// CleanTeams strips date, time, league, and noise debris out of a raw team
// string. When cleanup destroys the team-separator marker the original text
// is returned untouched: the pipeline must never discard data it cannot
// safely simplify.
func CleanTeams(teams, competition string) string {
	cleaned := teams

	for _, step := range cleanSteps {
		cleaned = strings.TrimSpace(step.re.ReplaceAllString(cleaned, step.repl))
	}

	// the competition label itself often leaks into the team cell
	if competition != "" {
		if idx := indexFold(cleaned, competition); idx >= 0 {
			cleaned = strings.TrimSpace(cleaned[:idx] + cleaned[idx+len(competition):])
		}
	}

	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
	cleaned = strings.TrimSpace(edgePunctRe.ReplaceAllString(cleaned, ""))

	if len(cleaned) > 3 && hasTeamSeparator(cleaned) {
		return cleaned
	}
	return teams
}

// hasTeamSeparator reports whether text still reads as "A <sep> B".
func hasTeamSeparator(text string) bool {
	return strings.Contains(text, "–") ||
		strings.Contains(text, "-") ||
		strings.Contains(text, "vs") ||
		strings.Contains(text, "v ")
}

// indexFold is a case-insensitive strings.Index.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}
