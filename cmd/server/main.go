package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pricescout/backend/config"
	httpDelivery "github.com/pricescout/backend/internal/delivery/http"
	"github.com/pricescout/backend/internal/infrastructure/browser"
	"github.com/pricescout/backend/internal/infrastructure/cache"
	"github.com/pricescout/backend/internal/infrastructure/llm"
	"github.com/pricescout/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Browser sessions: %d, probe timeout: %s", cfg.Browser.MaxSessions, cfg.Browser.ProbeTimeout)

	// Initialize infrastructure dependencies
	evidenceCache := cache.NewMemoryCache()
	log.Printf("Evidence cache TTL: %s", cfg.Cache.TTL)

	matcher := usecase.NewListingMatcher(usecase.MatchConfig{
		MinConfidenceThreshold: cfg.Matching.MinConfidenceThreshold,
		EnableDebugLogging:     cfg.Matching.EnableDebugLogging,
	})

	prober := browser.NewProber(cfg.Browser, matcher)
	defer prober.Close()

	llmClient := llm.NewClient(cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Timeout)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		llmClient.SetDebug(true)
		log.Printf("LLM client debug mode enabled")
	}

	log.Printf("LLM model: %s (timeout: %s)", cfg.LLM.Model, cfg.LLM.Timeout)

	// Initialize usecase layer
	analysisService := usecase.NewAnalysisService(
		prober,
		llmClient,
		evidenceCache,
		usecase.AnalysisServiceConfig{
			MaxSessions:        cfg.Browser.MaxSessions,
			ProbeTimeout:       cfg.Browser.ProbeTimeout,
			CacheTTL:           cfg.Cache.TTL,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(analysisService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
