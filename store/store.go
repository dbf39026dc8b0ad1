// Package store persists parsed bulletins in SQLite. A bulletin month is
// always written and replaced as a whole unit; corrections happen by
// deleting the month and re-importing it.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kmorales/visatrack/bulletin"
)

// Custom errors for store operations
var (
	ErrDuplicateMonth = errors.New("bulletin month already stored")
	ErrMonthNotFound  = errors.New("bulletin month not found")
)

// Store manages bulletin persistence using SQLite.
type Store struct {
	db *sql.DB
}

// TrendPoint is one sample of a priority date time series.
type TrendPoint struct {
	BulletinMonth string `json:"bulletin_month"`
	PriorityDate  string `json:"priority_date"`
}

// New creates a store with the given database path.
func New(dbPath string) (*Store, error) {
	// Foreign keys must be enabled per connection, so pass them in the DSN
	// rather than as a one-off PRAGMA on a pooled connection.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bulletins (
		bulletin_id TEXT PRIMARY KEY,
		bulletin_month TEXT NOT NULL UNIQUE,
		fetched_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS priority_dates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bulletin_id TEXT NOT NULL,
		table_type TEXT NOT NULL,
		visa_type TEXT NOT NULL,
		category TEXT NOT NULL,
		country TEXT NOT NULL,
		priority_date TEXT NOT NULL,
		FOREIGN KEY (bulletin_id) REFERENCES bulletins(bulletin_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_priority_dates_bulletin
		ON priority_dates(bulletin_id);
	CREATE INDEX IF NOT EXISTS idx_priority_dates_lookup
		ON priority_dates(category, country, table_type, visa_type);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBulletin stores one month's records in a single transaction. The month
// key must not already exist; callers re-importing a month delete it first.
func (s *Store) SaveBulletin(monthKey string, records []bulletin.Record) error {
	exists, err := s.BulletinExists(monthKey)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateMonth
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	bulletinID := uuid.New().String()
	fetchedAt := time.Now().UTC().Format(time.RFC3339)

	if _, err := tx.Exec(
		"INSERT INTO bulletins (bulletin_id, bulletin_month, fetched_at) VALUES (?, ?, ?)",
		bulletinID, monthKey, fetchedAt,
	); err != nil {
		return fmt.Errorf("failed to insert bulletin: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO priority_dates
			(bulletin_id, table_type, visa_type, category, country, priority_date)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			bulletinID, r.TableType, r.VisaType, r.Category, r.Country, r.PriorityDate,
		); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bulletin: %w", err)
	}

	return nil
}

// BulletinExists checks whether a bulletin month (YYYY-MM) is stored.
func (s *Store) BulletinExists(monthKey string) (bool, error) {
	var id string
	err := s.db.QueryRow(
		"SELECT bulletin_id FROM bulletins WHERE bulletin_month = ?", monthKey,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query bulletin: %w", err)
	}
	return true, nil
}

// DeleteBulletin removes a stored month and its records, so the month can be
// re-fetched and re-parsed.
func (s *Store) DeleteBulletin(monthKey string) error {
	result, err := s.db.Exec(
		"DELETE FROM bulletins WHERE bulletin_month = ?", monthKey,
	)
	if err != nil {
		return fmt.Errorf("failed to delete bulletin: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMonthNotFound
	}
	return nil
}

// DatesForMonth returns every record stored for a bulletin month.
func (s *Store) DatesForMonth(monthKey string) ([]bulletin.Record, error) {
	exists, err := s.BulletinExists(monthKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrMonthNotFound
	}

	rows, err := s.db.Query(`
		SELECT pd.table_type, pd.visa_type, pd.category, pd.country, pd.priority_date
		FROM priority_dates pd
		JOIN bulletins b ON pd.bulletin_id = b.bulletin_id
		WHERE b.bulletin_month = ?
		ORDER BY pd.id`, monthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []bulletin.Record
	for rows.Next() {
		var r bulletin.Record
		if err := rows.Scan(&r.TableType, &r.VisaType, &r.Category, &r.Country, &r.PriorityDate); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Trend returns the time series for one (category, country, table type,
// visa type) dimension, ordered by bulletin month ascending.
func (s *Store) Trend(category, country, tableType, visaType string) ([]TrendPoint, error) {
	rows, err := s.db.Query(`
		SELECT b.bulletin_month, pd.priority_date
		FROM priority_dates pd
		JOIN bulletins b ON pd.bulletin_id = b.bulletin_id
		WHERE pd.category = ? AND pd.country = ?
			AND pd.table_type = ? AND pd.visa_type = ?
		ORDER BY b.bulletin_month ASC`,
		category, country, tableType, visaType)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend: %w", err)
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.BulletinMonth, &p.PriorityDate); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Months returns all stored bulletin months, most recent first.
func (s *Store) Months() ([]string, error) {
	return s.stringColumn(
		"SELECT bulletin_month FROM bulletins ORDER BY bulletin_month DESC")
}

// LatestMonth returns the most recent stored bulletin month, or "" when the
// store is empty.
func (s *Store) LatestMonth() (string, error) {
	var month string
	err := s.db.QueryRow(
		"SELECT bulletin_month FROM bulletins ORDER BY bulletin_month DESC LIMIT 1",
	).Scan(&month)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest month: %w", err)
	}
	return month, nil
}

// Categories returns distinct stored categories, optionally filtered by visa
// type ("" for all), sorted.
func (s *Store) Categories(visaType string) ([]string, error) {
	if visaType != "" {
		return s.stringColumn(
			"SELECT DISTINCT category FROM priority_dates WHERE visa_type = ? ORDER BY category",
			visaType)
	}
	return s.stringColumn(
		"SELECT DISTINCT category FROM priority_dates ORDER BY category")
}

// Countries returns distinct stored countries, sorted.
func (s *Store) Countries() ([]string, error) {
	return s.stringColumn(
		"SELECT DISTINCT country FROM priority_dates ORDER BY country")
}

// stringColumn runs a single-column query and collects the values.
func (s *Store) stringColumn(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
