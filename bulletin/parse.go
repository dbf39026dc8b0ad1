package bulletin

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// identifyTable classifies a table by the text of its first header cell.
// Returns the visa type, or "" for non-data tables (legends, notes).
func identifyTable(headerText string) string {
	h := strings.ToLower(CleanText(headerText))
	if strings.Contains(h, "family") {
		return VisaFamily
	}
	if strings.Contains(h, "employment") {
		return VisaEmployment
	}
	return ""
}

// Parse extracts every canonical record from a bulletin HTML page.
//
// Tables are classified by their first header cell ("Family-Sponsored" or
// "Employment-based"); the first table seen for a visa type holds final
// action dates, the second holds filing dates, and any further tables of
// the same type are ignored. Remaining header cells give the ordered
// country list, and each data row is zipped positionally against it --
// column position is authoritative once the header is resolved.
//
// A page that yields no tables or no records is a valid empty result, not
// an error; callers decide whether that is worth reporting.
func Parse(html string) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var records []Record
	seen := map[string]int{}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headerCells := rows.First().Find("th, td")
		if headerCells.Length() == 0 {
			return
		}

		visaType := identifyTable(headerCells.First().Text())
		if visaType == "" {
			return
		}

		seen[visaType]++
		var tableType string
		switch seen[visaType] {
		case 1:
			tableType = TableFinalAction
		case 2:
			tableType = TableFiling
		default:
			return
		}

		// Country columns start after the category column.
		var countries []string
		headerCells.Slice(1, headerCells.Length()).Each(func(_ int, cell *goquery.Selection) {
			if country := NormalizeCountry(cell.Text()); country != "" {
				countries = append(countries, country)
			}
		})
		if len(countries) == 0 {
			return
		}

		for i := 1; i < rows.Length(); i++ {
			cells := rows.Eq(i).Find("th, td")
			if cells.Length() < 2 {
				continue
			}

			rawCategory := CleanText(cells.First().Text())
			if rawCategory == "" {
				continue
			}
			category := NormalizeCategory(rawCategory, visaType)

			for j := 1; j < cells.Length(); j++ {
				col := j - 1
				if col >= len(countries) {
					break
				}
				dateText := CleanText(cells.Eq(j).Text())
				if dateText == "" {
					continue
				}
				records = append(records, Record{
					TableType:    tableType,
					VisaType:     visaType,
					Category:     category,
					Country:      countries[col],
					PriorityDate: ParseDateToken(dateText),
				})
			}
		}
	})

	return records, nil
}
