package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kmorales/visatrack/bulletin"
	"github.com/kmorales/visatrack/config"
	"github.com/kmorales/visatrack/importer"
	"github.com/kmorales/visatrack/scraper"
	"github.com/kmorales/visatrack/store"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseMonth parses a YYYY-MM argument.
func parseMonth(s string) (bulletin.Month, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return bulletin.Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return bulletin.Month{}, fmt.Errorf("invalid year in %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return bulletin.Month{}, fmt.Errorf("invalid month in %q", s)
	}
	return bulletin.Month{Year: year, Month: month}, nil
}

// openStore opens the configured database or exits.
func openStore(cfg *config.FileConfig) *store.Store {
	st, err := store.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open store: %v\n", err)
		os.Exit(1)
	}
	return st
}

// newImporter wires a scraper client and importer from configuration.
func newImporter(cfg *config.FileConfig, st *store.Store, concurrency int) *importer.Importer {
	client := scraper.NewClient(cfg.Scraper.BaseURL)
	if cfg.Scraper.UserAgent != "" {
		client.SetUserAgent(cfg.Scraper.UserAgent)
	}

	impCfg := importer.DefaultConfig()
	if concurrency > 0 {
		impCfg.Concurrency = concurrency
	} else if cfg.Scraper.Concurrency > 0 {
		impCfg.Concurrency = cfg.Scraper.Concurrency
	}
	if timeout, err := cfg.FetchTimeoutDuration(); err == nil {
		impCfg.FetchTimeout = timeout
		client.SetTimeout(timeout)
	}

	return importer.New(client, st, impCfg)
}

// printSummary reports a batch outcome in build-log form.
func printSummary(summary *importer.Summary) {
	fmt.Println()
	fmt.Printf("Done. Imported: %d, Skipped: %d, Errors: %d\n",
		summary.Imported, summary.Skipped, len(summary.Errors))
	for _, monthErr := range summary.Errors {
		fmt.Printf("  - %s\n", monthErr.Error())
	}
}
