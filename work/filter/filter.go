package filter

import (
	"strings"

	"livetv-scraper/work/logger"
	"livetv-scraper/work/types"
)

// footballKeywords is deliberately looser than the classifier's sport
// table: section filtering wants a superset so borderline fixtures stay
// visible, while classification wants precision.
var footballKeywords = []string{
	"football", "soccer", "premier", "liga", "bundesliga", "serie a",
	"ligue", "champions league", "europa league", "uefa", "fifa", "world cup",
}

// Dedupe removes duplicate records by detail-page URL, first occurrence
// wins, order preserved. Idempotent.
func Dedupe(records []types.MatchRecord) []types.MatchRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]types.MatchRecord, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.DetailPageURL]; dup {
			continue
		}
		seen[r.DetailPageURL] = struct{}{}
		out = append(out, r)
	}
	return out
}

// BySection applies the section's post-extraction predicate. Only the
// football section filters; the live section is narrowed at the document
// level and the all section passes everything through.
func BySection(records []types.MatchRecord, section types.Section) []types.MatchRecord {
	if section != types.SectionFootball {
		return records
	}

	out := make([]types.MatchRecord, 0, len(records))
	for _, r := range records {
		if isFootball(r) {
			out = append(out, r)
		}
	}
	logger.Debug("filter: football section kept %d of %d records", len(out), len(records))
	return out
}

func isFootball(r types.MatchRecord) bool {
	if strings.EqualFold(r.Sport, "Football") {
		return true
	}
	combined := strings.ToLower(r.CombinedText())
	for _, kw := range footballKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

// Paginate slices records at offset for up to limit entries. The offset is
// clamped to [0, len]; limit zero means no limit.
func Paginate(records []types.MatchRecord, offset, limit int) []types.MatchRecord {
	if limit <= 0 {
		return records
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []types.MatchRecord{}
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}
