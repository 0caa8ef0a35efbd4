package classify

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		competition string
		teams       string
		detailURL   string
		wantSport   string
		wantLeague  string
	}{
		{
			name:        "premier league fixture",
			competition: "Premier League",
			teams:       "Arsenal – Chelsea",
			wantSport:   "Football",
			wantLeague:  "Premier League",
		},
		{
			name:        "nba fixture",
			competition: "NBA",
			teams:       "Lakers – Celtics",
			wantSport:   "Basketball",
			wantLeague:  "NBA",
		},
		{
			name:        "tennis major",
			competition: "Wimbledon",
			teams:       "Alcaraz – Sinner",
			wantSport:   "Tennis",
			wantLeague:  "Wimbledon",
		},
		{
			name:        "keyword hides in the url",
			competition: "",
			teams:       "Rangers – Bruins",
			detailURL:   "https://livetv.sx/enx/event/nhl-rangers-bruins/",
			wantSport:   "Ice Hockey",
			wantLeague:  "NHL",
		},
		{
			name:        "motor racing",
			competition: "Formula 1 Grand Prix",
			teams:       "Qualifying",
			wantSport:   "Motor Sports",
			wantLeague:  "Formula 1",
		},
		{
			name:        "no keyword falls back to default sport, blank league",
			competition: "Regional Friendly",
			teams:       "Alpha – Beta",
			wantSport:   DefaultSport,
			wantLeague:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sport, league := Classify(tc.competition, tc.teams, tc.detailURL)
			if sport != tc.wantSport || league != tc.wantLeague {
				t.Errorf("Classify(%q, %q, %q) = (%q, %q), want (%q, %q)",
					tc.competition, tc.teams, tc.detailURL,
					sport, league, tc.wantSport, tc.wantLeague)
			}
		})
	}
}

func TestClassifySportRuleOrder(t *testing.T) {
	// "champions league" must classify as football even though "league"
	// appears in other rule vocabularies downstream
	sport, league := Classify("Champions League", "Real Madrid – Bayern", "")
	if sport != "Football" {
		t.Errorf("sport = %q, want Football", sport)
	}
	if league != "Champions League" {
		t.Errorf("league = %q, want Champions League", league)
	}
}
