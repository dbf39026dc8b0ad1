// Package api exposes the stored bulletin history over HTTP for dashboards
// and charting front-ends.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kmorales/visatrack/bulletin"
	"github.com/kmorales/visatrack/store"
)

// Server represents the HTTP API server over a bulletin store.
type Server struct {
	store *store.Store
}

// NewServer creates an API server backed by the given store.
func NewServer(st *store.Store) *Server {
	return &Server{store: st}
}

// SetupRouter configures the Gin router with all API routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	api.GET("/months", s.HandleListMonths)
	api.GET("/months/:month", s.HandleGetMonth)
	api.GET("/trend", s.HandleTrend)
	api.GET("/categories", s.HandleListCategories)
	api.GET("/countries", s.HandleListCountries)
	api.GET("/compare", s.HandleCompare)

	return router
}

// errorJSON writes the standard error envelope.
func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// HandleListMonths handles GET /api/v1/months.
func (s *Server) HandleListMonths(c *gin.Context) {
	months, err := s.store.Months()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to list months: "+err.Error())
		return
	}
	if months == nil {
		months = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// HandleGetMonth handles GET /api/v1/months/:month with optional table_type
// and visa_type filters.
func (s *Server) HandleGetMonth(c *gin.Context) {
	monthKey := c.Param("month")

	records, err := s.store.DatesForMonth(monthKey)
	if errors.Is(err, store.ErrMonthNotFound) {
		errorJSON(c, http.StatusNotFound, "month_not_found", "No bulletin stored for "+monthKey)
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to get month: "+err.Error())
		return
	}

	if tableType := c.Query("table_type"); tableType != "" {
		records = filterRecords(records, func(r bulletin.Record) bool {
			return r.TableType == tableType
		})
	}
	if visaType := c.Query("visa_type"); visaType != "" {
		records = filterRecords(records, func(r bulletin.Record) bool {
			return r.VisaType == visaType
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"month":   monthKey,
		"records": records,
		"total":   len(records),
	})
}

// HandleTrend handles GET /api/v1/trend. All four dimension parameters are
// required; the series is ordered by month ascending.
func (s *Server) HandleTrend(c *gin.Context) {
	category := c.Query("category")
	country := c.Query("country")
	tableType := c.Query("table_type")
	visaType := c.Query("visa_type")

	if category == "" || country == "" || tableType == "" || visaType == "" {
		errorJSON(c, http.StatusBadRequest, "invalid_parameter",
			"category, country, table_type, and visa_type are required")
		return
	}

	points, err := s.store.Trend(category, country, tableType, visaType)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to get trend: "+err.Error())
		return
	}
	if points == nil {
		points = []store.TrendPoint{}
	}

	c.JSON(http.StatusOK, gin.H{
		"category":   category,
		"country":    country,
		"table_type": tableType,
		"visa_type":  visaType,
		"points":     points,
	})
}

// HandleListCategories handles GET /api/v1/categories with an optional
// visa_type filter.
func (s *Server) HandleListCategories(c *gin.Context) {
	categories, err := s.store.Categories(c.Query("visa_type"))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to list categories: "+err.Error())
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// HandleListCountries handles GET /api/v1/countries.
func (s *Server) HandleListCountries(c *gin.Context) {
	countries, err := s.store.Countries()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to list countries: "+err.Error())
		return
	}
	if countries == nil {
		countries = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

// CompareRow is one category's values in two months plus the movement
// between them.
type CompareRow struct {
	Category string `json:"category"`
	DateA    string `json:"date_a"`
	DateB    string `json:"date_b"`
	Movement string `json:"movement"`
}

// HandleCompare handles GET /api/v1/compare: per-category priority dates of
// two months for one (country, table_type, visa_type), with day movement.
func (s *Server) HandleCompare(c *gin.Context) {
	monthA := c.Query("month_a")
	monthB := c.Query("month_b")
	country := c.Query("country")
	tableType := c.Query("table_type")
	visaType := c.Query("visa_type")

	if monthA == "" || monthB == "" || country == "" || tableType == "" || visaType == "" {
		errorJSON(c, http.StatusBadRequest, "invalid_parameter",
			"month_a, month_b, country, table_type, and visa_type are required")
		return
	}

	recordsA, err := s.store.DatesForMonth(monthA)
	if errors.Is(err, store.ErrMonthNotFound) {
		errorJSON(c, http.StatusNotFound, "month_not_found", "No bulletin stored for "+monthA)
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to get month: "+err.Error())
		return
	}

	recordsB, err := s.store.DatesForMonth(monthB)
	if errors.Is(err, store.ErrMonthNotFound) {
		errorJSON(c, http.StatusNotFound, "month_not_found", "No bulletin stored for "+monthB)
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to get month: "+err.Error())
		return
	}

	datesA := indexDates(recordsA, country, tableType, visaType)
	datesB := indexDates(recordsB, country, tableType, visaType)

	categories, err := s.store.Categories(visaType)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "internal_error", "Failed to list categories: "+err.Error())
		return
	}

	rows := []CompareRow{}
	for _, category := range orderCategories(categories, visaType) {
		a := datesA[category]
		b := datesB[category]
		if a == "" && b == "" {
			continue
		}
		rows = append(rows, CompareRow{
			Category: category,
			DateA:    a,
			DateB:    b,
			Movement: bulletin.Movement(a, b),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"month_a":    monthA,
		"month_b":    monthB,
		"country":    country,
		"table_type": tableType,
		"visa_type":  visaType,
		"rows":       rows,
	})
}

// filterRecords keeps records matching the predicate.
func filterRecords(records []bulletin.Record, keep func(bulletin.Record) bool) []bulletin.Record {
	filtered := []bulletin.Record{}
	for _, r := range records {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// indexDates maps category to priority date for one dimension slice of a
// month's records.
func indexDates(records []bulletin.Record, country, tableType, visaType string) map[string]string {
	dates := map[string]string{}
	for _, r := range records {
		if r.Country == country && r.TableType == tableType && r.VisaType == visaType {
			dates[r.Category] = r.PriorityDate
		}
	}
	return dates
}

// Canonical display order for categories; anything else appends after in
// stored order.
var (
	employmentOrder = []string{
		"EB-1", "EB-2", "EB-3", "EB-3 Other Workers", "EB-4",
		"EB-4 Religious Workers", "EB-5 Unreserved", "EB-5 Rural",
		"EB-5 High Unemployment", "EB-5 Infrastructure",
	}
	familyOrder = []string{"F1", "F2A", "F2B", "F3", "F4"}
)

// orderCategories sorts categories into canonical display order, keeping
// unknown categories at the end.
func orderCategories(categories []string, visaType string) []string {
	canonical := employmentOrder
	if visaType == bulletin.VisaFamily {
		canonical = familyOrder
	}

	present := map[string]bool{}
	for _, c := range categories {
		present[c] = true
	}

	ordered := []string{}
	for _, c := range canonical {
		if present[c] {
			ordered = append(ordered, c)
			present[c] = false
		}
	}
	for _, c := range categories {
		if present[c] {
			ordered = append(ordered, c)
		}
	}
	return ordered
}
