package types

import "fmt"

// Section identifies a named extraction scope on the listing page. Each
// section binds a document-narrowing rule and/or a post-extraction filter;
// the locator and filter stages consult these when building a result set.
type Section int

const (
	SectionAll Section = iota // every match on the listing page
	SectionFootball           // full document, football keyword filter applied afterwards
	SectionLive               // narrowed to the "upcoming" container when present
)

// sectionInfo carries the per-section extraction parameters.
type sectionInfo struct {
	id        string
	display   string
	container string // CSS selector narrowing the document, empty for full document
}

var sections = map[Section]sectionInfo{
	SectionAll:      {id: "all", display: "All Matches", container: ""},
	SectionFootball: {id: "football", display: "Football", container: ""},
	SectionLive:     {id: "live", display: "Top Events LIVE", container: "#upcoming"},
}

// ID returns the stable identifier used in cache keys and API parameters.
func (s Section) ID() string { return sections[s].id }

// DisplayName returns the human-readable section name.
func (s Section) DisplayName() string { return sections[s].display }

// Container returns the CSS selector the locator narrows the document to,
// or an empty string when the section spans the full document.
func (s Section) Container() string { return sections[s].container }

func (s Section) String() string { return sections[s].id }

// AllSections lists every known section in a stable order.
func AllSections() []Section {
	return []Section{SectionAll, SectionFootball, SectionLive}
}

// ParseSection resolves a section identifier from an API parameter.
// An empty identifier maps to SectionAll.
func ParseSection(id string) (Section, error) {
	switch id {
	case "", "all":
		return SectionAll, nil
	case "football":
		return SectionFootball, nil
	case "live":
		return SectionLive, nil
	default:
		return SectionAll, fmt.Errorf("unknown section: %q", id)
	}
}

// MatchRecord is the structured result of extracting one event from the
// listing page. DetailPageURL is the identity key: unique, stable, and the
// join point for stream-link resolution.
type MatchRecord struct {
	Time          string   `json:"time"`
	Teams         string   `json:"teams"`
	Competition   string   `json:"competition"`
	Sport         string   `json:"sport"`
	League        string   `json:"league"`
	DetailPageURL string   `json:"detailPageUrl"`
	StreamLinks   []string `json:"streamLinks"`
	LinksLoading  bool     `json:"linksLoading"`
}

// CombinedText concatenates the textual fields used by section filtering
// and live search.
func (m MatchRecord) CombinedText() string {
	return m.Teams + " " + m.Competition + " " + m.League + " " + m.Sport
}
