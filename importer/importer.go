// Package importer is the batch driver: it walks a month range (or the
// index page's discoveries), fetches and parses each bulletin, and commits
// each month to the store as one unit. Failures are recorded per month and
// never abort the batch.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/kmorales/visatrack/bulletin"
	"github.com/kmorales/visatrack/scraper"
	"github.com/kmorales/visatrack/store"
)

// ErrNoDataParsed marks a month whose document fetched fine but yielded no
// records. Soft: reported in the summary, never fatal.
var ErrNoDataParsed = errors.New("no data parsed")

// MonthError records a failure for one month of a batch.
type MonthError struct {
	Month string
	Err   error
}

func (e MonthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Month, e.Err)
}

func (e MonthError) Unwrap() error {
	return e.Err
}

// Summary reports the outcome of a batch operation.
type Summary struct {
	Imported int
	Skipped  int
	Errors   []MonthError
}

// Config holds batch driver settings.
type Config struct {
	// Number of months fetched in parallel. Each month commits atomically,
	// so workers never contend on a month.
	Concurrency int
	// Timeout per bulletin fetch, so one stalled request cannot stall the
	// batch.
	FetchTimeout time.Duration
}

// DefaultConfig returns the default batch settings: sequential fetching
// with a 30 second per-document timeout.
func DefaultConfig() *Config {
	return &Config{
		Concurrency:  1,
		FetchTimeout: 30 * time.Second,
	}
}

// Importer drives batch acquisition of bulletins.
type Importer struct {
	client *scraper.Client
	store  *store.Store
	config *Config
}

// New creates an importer. A nil config uses DefaultConfig.
func New(client *scraper.Client, st *store.Store, config *Config) *Importer {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Importer{
		client: client,
		store:  st,
		config: config,
	}
}

// ImportRange fetches, parses, and stores every month from start to end
// inclusive. Months already stored are skipped; failed months are recorded
// in the summary and the batch continues. A cancelled context stops the
// batch between month units and returns the partial summary with ctx.Err().
func (imp *Importer) ImportRange(ctx context.Context, start, end bulletin.Month) (*Summary, error) {
	return imp.importMonths(ctx, bulletin.MonthRange(start, end))
}

// RefreshLatest discovers which bulletins the index page links to and
// imports the most recent `limit` of them that are not yet stored.
func (imp *Importer) RefreshLatest(ctx context.Context, limit int) (*Summary, error) {
	months, err := imp.client.DiscoverBulletins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover bulletins: %w", err)
	}
	if len(months) > limit {
		months = months[:limit]
	}
	return imp.importMonths(ctx, months)
}

// importMonths runs the fetch-parse-save unit for each month through a
// bounded worker pool.
func (imp *Importer) importMonths(ctx context.Context, months []bulletin.Month) (*Summary, error) {
	summary := &Summary{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, imp.config.Concurrency)

	for _, month := range months {
		// Checked before acquiring a worker slot: a select alone could pick
		// the semaphore case even after cancellation.
		if ctx.Err() != nil {
			wg.Wait()
			sortErrors(summary)
			return summary, ctx.Err()
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			sortErrors(summary)
			return summary, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(m bulletin.Month) {
			defer wg.Done()
			defer func() { <-sem }()

			imported, err := imp.importMonth(ctx, m)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				log.Printf("ERROR: %s: %v", m.Key(), err)
				summary.Errors = append(summary.Errors, MonthError{Month: m.Key(), Err: err})
			case imported:
				summary.Imported++
			default:
				summary.Skipped++
			}
		}(month)
	}

	wg.Wait()
	sortErrors(summary)
	return summary, nil
}

// importMonth is one idempotent fetch-parse-save unit. Returns false with a
// nil error when the month was already stored.
func (imp *Importer) importMonth(ctx context.Context, m bulletin.Month) (bool, error) {
	exists, err := imp.store.BulletinExists(m.Key())
	if err != nil {
		return false, err
	}
	if exists {
		log.Printf("INFO: %s already stored, skipping", m.Key())
		return false, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, imp.config.FetchTimeout)
	defer cancel()

	html, err := imp.client.FetchBulletin(fetchCtx, m.Year, m.Month)
	if err != nil {
		return false, err
	}

	records, err := bulletin.Parse(html)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		log.Printf("WARN: %s: no data parsed", m.Key())
		return false, ErrNoDataParsed
	}

	if err := imp.store.SaveBulletin(m.Key(), records); err != nil {
		return false, err
	}

	log.Printf("INFO: imported %s (%d records)", m.Key(), len(records))
	return true, nil
}

// sortErrors orders per-month errors chronologically so parallel batches
// report deterministically.
func sortErrors(summary *Summary) {
	sort.Slice(summary.Errors, func(i, j int) bool {
		return summary.Errors[i].Month < summary.Errors[j].Month
	})
}
