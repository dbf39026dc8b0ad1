package bulletin

import "fmt"

// monthNames as they appear in bulletin URLs, January first.
var monthNames = [12]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// Month is a calendar (year, month) pair identifying one bulletin.
type Month struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Key returns the canonical YYYY-MM form used to key stored bulletins.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// after reports whether m is strictly after o in calendar order.
func (m Month) after(o Month) bool {
	if m.Year != o.Year {
		return m.Year > o.Year
	}
	return m.Month > o.Month
}

// MonthName returns the lowercase name for a 1-based month number.
func MonthName(month int) string {
	return monthNames[month-1]
}

// MonthNumber resolves a lowercase month name to its 1-based number.
func MonthNumber(name string) (int, bool) {
	for i, n := range monthNames {
		if n == name {
			return i + 1, true
		}
	}
	return 0, false
}

// FiscalYear returns the federal fiscal year for a calendar (year, month).
// The fiscal year runs October through September, so October 2025 falls in
// FY2026.
func FiscalYear(year, month int) int {
	if month >= 10 {
		return year + 1
	}
	return year
}

// MonthRange returns every month from start to end inclusive, increasing by
// calendar month. Empty when start is after end. Each call returns a fresh
// slice.
func MonthRange(start, end Month) []Month {
	var months []Month
	for m := start; !m.after(end); {
		months = append(months, m)
		m.Month++
		if m.Month > 12 {
			m.Month = 1
			m.Year++
		}
	}
	return months
}
