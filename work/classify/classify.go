package classify

import "strings"

// DefaultSport is assumed when no keyword table matches; football dominates
// the source listing.
const DefaultSport = "Football"

// keywordRule maps any-of substrings to a label. Rules are checked in order
// and the first hit wins, so more specific entries sit above generic ones.
type keywordRule struct {
	keywords []string
	label    string
}

var sportRules = []keywordRule{
	{[]string{
		"football", "soccer", "premier league", "la liga", "serie a",
		"bundesliga", "champions league", "uefa", "fifa", "world cup",
		"ligue 1", "eredivisie",
	}, "Football"},
	{[]string{"basketball", "nba", "euroleague", "fiba"}, "Basketball"},
	{[]string{"tennis", "atp", "wta", "wimbledon", "us open", "french open"}, "Tennis"},
	{[]string{"hockey", "nhl", "iihf"}, "Ice Hockey"},
	{[]string{"baseball", "mlb"}, "Baseball"},
	{[]string{"rugby"}, "Rugby"},
	{[]string{"cricket"}, "Cricket"},
	{[]string{"boxing", "mma", "ufc"}, "Combat Sports"},
	{[]string{"formula", "f1", "motogp", "racing"}, "Motor Sports"},
	{[]string{"volleyball"}, "Volleyball"},
}

var leagueRules = []keywordRule{
	// football
	{[]string{"premier league"}, "Premier League"},
	{[]string{"la liga"}, "La Liga"},
	{[]string{"serie a"}, "Serie A"},
	{[]string{"bundesliga"}, "Bundesliga"},
	{[]string{"ligue 1"}, "Ligue 1"},
	{[]string{"champions league"}, "Champions League"},
	{[]string{"europa league"}, "Europa League"},
	{[]string{"world cup"}, "World Cup"},
	{[]string{"euros", "euro 20"}, "European Championship"},
	{[]string{"eredivisie"}, "Eredivisie"},
	{[]string{"mls"}, "MLS"},
	// basketball
	{[]string{"nba"}, "NBA"},
	{[]string{"euroleague"}, "EuroLeague"},
	{[]string{"ncaa"}, "NCAA"},
	// tennis
	{[]string{"wimbledon"}, "Wimbledon"},
	{[]string{"us open"}, "US Open"},
	{[]string{"french open"}, "French Open"},
	{[]string{"australian open"}, "Australian Open"},
	{[]string{"atp"}, "ATP Tour"},
	{[]string{"wta"}, "WTA Tour"},
	// other
	{[]string{"nhl"}, "NHL"},
	{[]string{"mlb"}, "MLB"},
	{[]string{"nfl"}, "NFL"},
	{[]string{"ufc"}, "UFC"},
	{[]string{"formula 1", "f1"}, "Formula 1"},
}

// Classify infers sport and league from the combined extraction text. The
// two tables are independent: league stays blank when no specific keyword
// matches rather than being back-filled from the sport, which would just
// duplicate the competition field downstream.
func Classify(competition, teams, detailURL string) (sport, league string) {
	combined := strings.ToLower(competition + " " + teams + " " + detailURL)

	sport = DefaultSport
	for _, rule := range sportRules {
		if matchesAny(combined, rule.keywords) {
			sport = rule.label
			break
		}
	}

	for _, rule := range leagueRules {
		if matchesAny(combined, rule.keywords) {
			league = rule.label
			break
		}
	}

	return sport, league
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
