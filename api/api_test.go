package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorales/visatrack/bulletin"
	"github.com/kmorales/visatrack/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test helper: server over a temp store preloaded with two months
func setupTestServer(t *testing.T) (*gin.Engine, *store.Store) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.SaveBulletin("2024-01", []bulletin.Record{
		{TableType: bulletin.TableFinalAction, VisaType: bulletin.VisaEmployment,
			Category: "EB-1", Country: "India", PriorityDate: "2023-01-01"},
		{TableType: bulletin.TableFinalAction, VisaType: bulletin.VisaEmployment,
			Category: "EB-2", Country: "India", PriorityDate: "2012-04-15"},
		{TableType: bulletin.TableFiling, VisaType: bulletin.VisaEmployment,
			Category: "EB-1", Country: "India", PriorityDate: "C"},
		{TableType: bulletin.TableFinalAction, VisaType: bulletin.VisaFamily,
			Category: "F1", Country: "Mexico", PriorityDate: "2005-04-22"},
	}))
	require.NoError(t, st.SaveBulletin("2024-02", []bulletin.Record{
		{TableType: bulletin.TableFinalAction, VisaType: bulletin.VisaEmployment,
			Category: "EB-1", Country: "India", PriorityDate: "C"},
		{TableType: bulletin.TableFinalAction, VisaType: bulletin.VisaEmployment,
			Category: "EB-2", Country: "India", PriorityDate: "2012-05-15"},
	}))

	return NewServer(st).SetupRouter(), st
}

// Test helper: GET a path and decode the JSON body
func doGet(t *testing.T, router *gin.Engine, path string) (int, map[string]json.RawMessage) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	body := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "response should be JSON")
	return w.Code, body
}

// TestHandleListMonths verifies month listing, newest first
func TestHandleListMonths(t *testing.T) {
	router, _ := setupTestServer(t)

	code, body := doGet(t, router, "/api/v1/months")
	require.Equal(t, http.StatusOK, code)

	var months []string
	require.NoError(t, json.Unmarshal(body["months"], &months))
	assert.Equal(t, []string{"2024-02", "2024-01"}, months)
}

// TestHandleGetMonth verifies record retrieval and filters
func TestHandleGetMonth(t *testing.T) {
	router, _ := setupTestServer(t)

	code, body := doGet(t, router, "/api/v1/months/2024-01")
	require.Equal(t, http.StatusOK, code)

	var records []bulletin.Record
	require.NoError(t, json.Unmarshal(body["records"], &records))
	assert.Len(t, records, 4)

	code, body = doGet(t, router, "/api/v1/months/2024-01?table_type=filing&visa_type=employment")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body["records"], &records))
	require.Len(t, records, 1)
	assert.Equal(t, "C", records[0].PriorityDate)
}

// TestHandleGetMonth_NotFound verifies the 404 envelope
func TestHandleGetMonth_NotFound(t *testing.T) {
	router, _ := setupTestServer(t)

	code, body := doGet(t, router, "/api/v1/months/1999-01")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, string(body["error"]), "month_not_found")
}

// TestHandleTrend verifies the time series endpoint
func TestHandleTrend(t *testing.T) {
	router, _ := setupTestServer(t)

	code, body := doGet(t, router,
		"/api/v1/trend?category=EB-2&country=India&table_type=final_action&visa_type=employment")
	require.Equal(t, http.StatusOK, code)

	var points []store.TrendPoint
	require.NoError(t, json.Unmarshal(body["points"], &points))
	assert.Equal(t, []store.TrendPoint{
		{BulletinMonth: "2024-01", PriorityDate: "2012-04-15"},
		{BulletinMonth: "2024-02", PriorityDate: "2012-05-15"},
	}, points)
}

// TestHandleTrend_MissingParams verifies parameter validation
func TestHandleTrend_MissingParams(t *testing.T) {
	router, _ := setupTestServer(t)

	code, body := doGet(t, router, "/api/v1/trend?category=EB-2")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(body["error"]), "invalid_parameter")
}

// TestHandleListCategories verifies the visa_type filter
func TestHandleListCategories(t *testing.T) {
	router, _ := setupTestServer(t)

	code, body := doGet(t, router, "/api/v1/categories?visa_type=employment")
	require.Equal(t, http.StatusOK, code)

	var categories []string
	require.NoError(t, json.Unmarshal(body["categories"], &categories))
	assert.Equal(t, []string{"EB-1", "EB-2"}, categories)
}

// TestHandleListCountries verifies country listing
func TestHandleListCountries(t *testing.T) {
	router, _ := setupTestServer(t)

	code, body := doGet(t, router, "/api/v1/countries")
	require.Equal(t, http.StatusOK, code)

	var countries []string
	require.NoError(t, json.Unmarshal(body["countries"], &countries))
	assert.Equal(t, []string{"India", "Mexico"}, countries)
}

// TestHandleCompare verifies month-over-month comparison rows
func TestHandleCompare(t *testing.T) {
	router, _ := setupTestServer(t)

	code, body := doGet(t, router,
		"/api/v1/compare?month_a=2024-01&month_b=2024-02&country=India&table_type=final_action&visa_type=employment")
	require.Equal(t, http.StatusOK, code)

	var rows []CompareRow
	require.NoError(t, json.Unmarshal(body["rows"], &rows))
	assert.Equal(t, []CompareRow{
		{Category: "EB-1", DateA: "2023-01-01", DateB: "C", Movement: "Became Current"},
		{Category: "EB-2", DateA: "2012-04-15", DateB: "2012-05-15", Movement: "+30"},
	}, rows)
}

// TestHandleCompare_MissingParams verifies parameter validation
func TestHandleCompare_MissingParams(t *testing.T) {
	router, _ := setupTestServer(t)

	code, _ := doGet(t, router, "/api/v1/compare?month_a=2024-01")
	assert.Equal(t, http.StatusBadRequest, code)
}
