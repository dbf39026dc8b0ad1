// Package bulletin contains the core visa bulletin domain: the canonical
// record type, text normalization, HTML table parsing, and calendar helpers.
// Everything in this package is pure -- no I/O, no shared state.
package bulletin

// Table types. The first table of a visa type in a bulletin holds final
// action dates, the second holds filing dates.
const (
	TableFinalAction = "final_action"
	TableFiling      = "filing"
)

// Visa types.
const (
	VisaEmployment = "employment"
	VisaFamily     = "family"
)

// Priority date sentinels. "C" means current (no backlog, all applicants
// qualify); "U" means unavailable (no numbers being issued).
const (
	Current     = "C"
	Unavailable = "U"
)

// Record is one cell of a bulletin table in canonical form: the priority
// date cutoff for a (category, country) pair in one of the two cutoff
// regimes. Records are constructed only by Parse and never mutated.
type Record struct {
	TableType    string `json:"table_type"`
	VisaType     string `json:"visa_type"`
	Category     string `json:"category"`
	Country      string `json:"country"`
	PriorityDate string `json:"priority_date"`
}
