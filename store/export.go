package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kmorales/visatrack/bulletin"
)

// Snapshot is the flat JSON form of the whole store, consumed by static
// frontends that cannot query SQLite directly.
type Snapshot struct {
	Months     []string                   `json:"months"`
	Countries  []string                   `json:"countries"`
	Categories map[string][]string        `json:"categories"`
	Data       map[string][]CompactRecord `json:"data"`
}

// CompactRecord is a Record with abbreviated keys to keep the export small.
type CompactRecord struct {
	TableType    string `json:"tt"`
	VisaType     string `json:"vt"`
	Category     string `json:"cat"`
	Country      string `json:"co"`
	PriorityDate string `json:"pd"`
}

// Export writes a Snapshot of every stored bulletin to w as compact JSON.
func (s *Store) Export(w io.Writer) error {
	snapshot, err := s.BuildSnapshot()
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// BuildSnapshot assembles the export structure from the store.
func (s *Store) BuildSnapshot() (*Snapshot, error) {
	months, err := s.Months()
	if err != nil {
		return nil, err
	}

	countries, err := s.Countries()
	if err != nil {
		return nil, err
	}

	employment, err := s.Categories(bulletin.VisaEmployment)
	if err != nil {
		return nil, err
	}
	family, err := s.Categories(bulletin.VisaFamily)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Months:    months,
		Countries: countries,
		Categories: map[string][]string{
			bulletin.VisaEmployment: employment,
			bulletin.VisaFamily:     family,
		},
		Data: map[string][]CompactRecord{},
	}

	for _, month := range months {
		records, err := s.DatesForMonth(month)
		if err != nil {
			return nil, err
		}
		compact := make([]CompactRecord, 0, len(records))
		for _, r := range records {
			compact = append(compact, CompactRecord{
				TableType:    r.TableType,
				VisaType:     r.VisaType,
				Category:     r.Category,
				Country:      r.Country,
				PriorityDate: r.PriorityDate,
			})
		}
		snapshot.Data[month] = compact
	}

	return snapshot, nil
}
