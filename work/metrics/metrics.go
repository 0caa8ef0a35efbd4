package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PagesFetched counts pages retrieved from the source site. The "kind"
// label distinguishes listing pages from match detail pages.
var PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "livetv_scraper_pages_fetched",
	Help: "Number of pages fetched from the source site",
}, []string{"kind"})

// FetchErrors counts failed page fetches by kind.
var FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "livetv_scraper_fetch_errors",
	Help: "Number of failed page fetches",
}, []string{"kind"})

// MatchesExtracted counts match records accepted by the extraction pipeline.
var MatchesExtracted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "livetv_scraper_matches_extracted",
	Help: "Number of match records accepted by extraction",
})

// RecordsDropped counts candidates rejected during extraction, usually
// because the cleaned team text was too short to be a real fixture.
var RecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "livetv_scraper_records_dropped",
	Help: "Number of candidate records dropped during extraction",
})

// LinksDiscovered counts validated stream links by protocol family.
var LinksDiscovered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "livetv_scraper_links_discovered",
	Help: "Number of validated stream links discovered",
}, []string{"kind"})

// LinksRejected counts discovered URLs dropped by validation.
var LinksRejected = promauto.NewCounter(prometheus.CounterOpts{
	Name: "livetv_scraper_links_rejected",
	Help: "Number of discovered stream URLs rejected as malformed",
})

// BackgroundScans tracks currently running full-corpus section scans.
var BackgroundScans = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "livetv_scraper_background_scans",
	Help: "Number of background full-corpus scans in flight",
})
