package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorales/visatrack/bulletin"
	"github.com/kmorales/visatrack/scraper"
	"github.com/kmorales/visatrack/store"
)

// Test helper: minimal parseable bulletin HTML
const testBulletinHTML = `
<table>
  <tr><th>Employment-based</th><th>INDIA</th><th>CHINA-mainland born</th></tr>
  <tr><td>1st</td><td>C</td><td>01FEB23</td></tr>
  <tr><td>2nd</td><td>15APR12</td><td>01JUN20</td></tr>
</table>`

// Test helper: serve canned bulletin pages keyed by (year, month)
func newBulletinServer(t *testing.T, pages map[string]string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for key, body := range pages {
			if r.URL.Path == bulletinPath(key) {
				w.Write([]byte(body))
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

// bulletinPath builds the site path for a YYYY-MM key.
func bulletinPath(monthKey string) string {
	var year, month int
	fmt.Sscanf(monthKey, "%d-%d", &year, &month)
	return fmt.Sprintf(
		"/content/travel/en/legal/visa-law0/visa-bulletin/%d/visa-bulletin-for-%s-%d.html",
		bulletin.FiscalYear(year, month), bulletin.MonthName(month), year)
}

// Test helper: importer over a temp store and a canned server
func newTestImporter(t *testing.T, server *httptest.Server, config *Config) (*Importer, *store.Store) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	client := scraper.NewClient(server.URL)
	return New(client, st, config), st
}

// TestImportRange verifies a mixed batch: imports, a fetch failure, and a
// no-data month, without aborting
func TestImportRange(t *testing.T) {
	server := newBulletinServer(t, map[string]string{
		"2024-01": testBulletinHTML,
		"2024-02": "<html><p>page without tables</p></html>",
		// 2024-03 is missing: the server 404s it.
		"2024-04": testBulletinHTML,
	})
	imp, st := newTestImporter(t, server, nil)

	summary, err := imp.ImportRange(context.Background(),
		bulletin.Month{Year: 2024, Month: 1}, bulletin.Month{Year: 2024, Month: 4})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	require.Len(t, summary.Errors, 2)

	assert.Equal(t, "2024-02", summary.Errors[0].Month)
	assert.ErrorIs(t, summary.Errors[0], ErrNoDataParsed)

	assert.Equal(t, "2024-03", summary.Errors[1].Month)
	var fetchErr *scraper.FetchError
	assert.ErrorAs(t, summary.Errors[1], &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)

	// The failed months left no partial state behind.
	for key, want := range map[string]bool{
		"2024-01": true, "2024-02": false, "2024-03": false, "2024-04": true,
	} {
		exists, err := st.BulletinExists(key)
		require.NoError(t, err)
		assert.Equal(t, want, exists, "existence of %s", key)
	}

	records, err := st.DatesForMonth("2024-01")
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

// TestImportRange_SkipsExisting verifies re-running a batch is idempotent
func TestImportRange_SkipsExisting(t *testing.T) {
	server := newBulletinServer(t, map[string]string{
		"2024-01": testBulletinHTML,
		"2024-02": testBulletinHTML,
	})
	imp, _ := newTestImporter(t, server, nil)

	start := bulletin.Month{Year: 2024, Month: 1}
	end := bulletin.Month{Year: 2024, Month: 2}

	first, err := imp.ImportRange(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Imported)

	second, err := imp.ImportRange(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 2, second.Skipped)
	assert.Empty(t, second.Errors)
}

// TestImportRange_Parallel verifies a worker pool batch commits every month
func TestImportRange_Parallel(t *testing.T) {
	pages := map[string]string{}
	for m := 1; m <= 8; m++ {
		pages[fmt.Sprintf("2024-%02d", m)] = testBulletinHTML
	}
	server := newBulletinServer(t, pages)
	imp, st := newTestImporter(t, server, &Config{Concurrency: 4, FetchTimeout: DefaultConfig().FetchTimeout})

	summary, err := imp.ImportRange(context.Background(),
		bulletin.Month{Year: 2024, Month: 1}, bulletin.Month{Year: 2024, Month: 8})
	require.NoError(t, err)

	assert.Equal(t, 8, summary.Imported)
	assert.Empty(t, summary.Errors)

	months, err := st.Months()
	require.NoError(t, err)
	assert.Len(t, months, 8)
}

// TestImportRange_Cancelled verifies cancellation stops between month units
func TestImportRange_Cancelled(t *testing.T) {
	server := newBulletinServer(t, map[string]string{"2024-01": testBulletinHTML})
	imp, _ := newTestImporter(t, server, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := imp.ImportRange(ctx,
		bulletin.Month{Year: 2024, Month: 1}, bulletin.Month{Year: 2024, Month: 6})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, summary)
}

// TestRefreshLatest verifies index discovery feeding the importer
func TestRefreshLatest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/content/travel/en/legal/visa-law0/visa-bulletin.html",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `
			<a href="/x/visa-bulletin-for-march-2024.html">March</a>
			<a href="/x/visa-bulletin-for-february-2024.html">February</a>
			<a href="/x/visa-bulletin-for-january-2024.html">January</a>`)
		})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case bulletinPath("2024-03"), bulletinPath("2024-02"):
			w.Write([]byte(testBulletinHTML))
		default:
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	imp, st := newTestImporter(t, server, nil)

	// Pre-store February so refresh skips it.
	require.NoError(t, st.SaveBulletin("2024-02", []bulletin.Record{
		{TableType: bulletin.TableFinalAction, VisaType: bulletin.VisaEmployment,
			Category: "EB-1", Country: "India", PriorityDate: "C"},
	}))

	summary, err := imp.RefreshLatest(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Imported, "only March is new within the limit")
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, summary.Errors)

	exists, err := st.BulletinExists("2024-03")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = st.BulletinExists("2024-01")
	require.NoError(t, err)
	assert.False(t, exists, "January is beyond the refresh limit")
}
