package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"livetv-scraper/work/client"
	"livetv-scraper/work/config"
	"livetv-scraper/work/handlers"
	"livetv-scraper/work/logger"
	"livetv-scraper/work/middleware"
	"livetv-scraper/work/prefs"
	"livetv-scraper/work/scraper"
	"livetv-scraper/work/session"
)

var (
	Version = "v0.1.0" // default version
)

func main() {

	// load our config and wire the log level
	cfg := config.LoadConfig()
	if cfg.Debug {
		logger.SetLevel("DEBUG")
	} else {
		logger.SetLevel(cfg.LogLevel)
	}

	// preference store supplies the listing URL and stream proxy host
	prefStore, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		log.Fatalf("Failed to open preference store: %v", err)
	}
	defer prefStore.Close()

	baseURL := prefStore.BaseURL()

	// browser-like HTTP client with permissive TLS
	httpClient := client.New(cfg)

	// worker pool for concurrent stream-link fetches
	workerPool, err := ants.NewPool(cfg.WorkerThreads, ants.WithPreAlloc(true))
	if err != nil {
		log.Fatalf("Failed to create worker pool: %v", err)
	}
	defer workerPool.Release()

	// extraction pipeline and session orchestrator
	scr := scraper.New(httpClient, cfg, baseURL)
	sess := session.New(cfg, scr, workerPool)

	// Setup HTTP routes
	router := mux.NewRouter()

	// promhttp negotiates its own encoding, so compression wraps the API
	// subrouter only
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.Gzip)

	api.HandleFunc("/matches", handlers.HandleMatches(sess)).Methods("GET")
	api.HandleFunc("/matches/search", handlers.HandleSearch(sess)).Methods("GET")
	api.HandleFunc("/matches/refresh", handlers.HandleRefresh(sess)).Methods("POST")
	api.HandleFunc("/match/links", handlers.HandleMatchLinks(sess)).Methods("POST")
	api.HandleFunc("/filters", handlers.HandleFilters(sess)).Methods("POST")
	api.HandleFunc("/sections", handlers.HandleSections()).Methods("GET")
	api.HandleFunc("/probe", handlers.HandleProbe(scr)).Methods("GET")
	api.HandleFunc("/prefs", handlers.HandlePrefs(prefStore)).Methods("GET", "POST")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.ListenPort)

	logger.Info("Starting LiveTV Scraper %s", Version)
	logger.Info("Server configuration:")
	logger.Info("  - Listen Address: %s", addr)
	logger.Info("  - Listing URL: %s", baseURL)
	logger.Info("  - Stream Proxy: %s", prefStore.StreamProxy())
	logger.Info("  - Worker Threads: %d", cfg.WorkerThreads)
	logger.Info("  - Fetch Timeout: %s", cfg.FetchTimeout)
	logger.Info("  - Page Sizes: %d initial / %d more", cfg.InitialPageSize, cfg.MorePageSize)
	logger.Info("  - Link Cache: %d entries, %s TTL", cfg.LinkCacheSize, cfg.LinkCacheTTL)
	logger.Info("  - Debug Enabled: %v", cfg.Debug)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
