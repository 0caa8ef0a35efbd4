package handlers

import (
	"encoding/json"
	"net/http"

	"livetv-scraper/work/logger"
	"livetv-scraper/work/prefs"
	"livetv-scraper/work/scraper"
	"livetv-scraper/work/session"
	"livetv-scraper/work/types"
)

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("handlers: failed to encode response: %v", err)
	}
}

func sectionParam(r *http.Request) (types.Section, error) {
	return types.ParseSection(r.URL.Query().Get("section"))
}

// HandleMatches serves the visible window for a section. `more=1` widens
// the window by one page first; calling it again after a list-load failure
// is the retry entry point.
func HandleMatches(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var view session.View
		if r.URL.Query().Get("more") == "1" {
			view = s.LoadMore(r.Context(), section)
		} else {
			view = s.Visible(r.Context(), section)
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// HandleSearch serves live search over the section's fetched corpus;
// pagination is bypassed entirely.
func HandleSearch(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		query := r.URL.Query().Get("q")
		if query == "" {
			http.Error(w, "missing query parameter q", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, s.Search(r.Context(), section, query))
	}
}

// HandleRefresh discards a section's cache.
func HandleRefresh(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Refresh(section)
		writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed", "section": section.ID()})
	}
}

// HandleMatchLinks rescans one match's detail page for stream links.
func HandleMatchLinks(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		detailURL := r.URL.Query().Get("url")
		if detailURL == "" {
			http.Error(w, "missing query parameter url", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, s.RefreshMatchLinks(r.Context(), section, detailURL))
	}
}

// HandleFilters sets the active sport/league filters for a section.
func HandleFilters(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sport := r.URL.Query().Get("sport")
		league := r.URL.Query().Get("league")
		writeJSON(w, http.StatusOK, s.SetFilters(r.Context(), section, sport, league))
	}
}

// HandleSections lists the available extraction sections.
func HandleSections() http.HandlerFunc {
	type sectionInfo struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var out []sectionInfo
		for _, s := range types.AllSections() {
			out = append(out, sectionInfo{ID: s.ID(), DisplayName: s.DisplayName()})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleProbe parses a discovered HLS link's manifest to confirm it is
// actually playable.
func HandleProbe(scr *scraper.Scraper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			http.Error(w, "missing query parameter url", http.StatusBadRequest)
			return
		}
		result, err := scr.ProbeHLS(r.Context(), url)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// HandlePrefs reads or updates the preference store. GET returns the
// current values; POST accepts base_url and stream_proxy parameters.
func HandlePrefs(store *prefs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if baseURL := r.URL.Query().Get("base_url"); baseURL != "" {
				if err := store.SetBaseURL(baseURL); err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
			}
			if proxy := r.URL.Query().Get("stream_proxy"); proxy != "" {
				if err := store.SetStreamProxy(proxy); err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"base_url":     store.BaseURL(),
			"stream_proxy": store.StreamProxy(),
		})
	}
}
