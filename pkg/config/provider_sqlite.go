package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/chrissnell/ephemeris/pkg/migrate"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationProvider returns the provider for the configuration schema.
func MigrationProvider() *migrate.FSProvider {
	return migrate.NewFSProvider(migrations, "migrations", "schema_migrations")
}

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens dbPath and brings its schema up to date.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if err := migrate.NewMigrator(db, MigrationProvider()).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	observers, err := s.GetObservers()
	if err != nil {
		return nil, fmt.Errorf("failed to load observers: %w", err)
	}
	config.Observers = observers

	report, err := s.GetReportSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load report settings: %w", err)
	}
	config.Report = *report

	config.ApplyDefaults()
	return config, nil
}

// GetObservers returns observer configurations in their saved order
func (s *SQLiteProvider) GetObservers() ([]ObserverData, error) {
	query := `
		SELECT name, region, latitude, longitude, elevation, timezone
		FROM observers
		ORDER BY position, id
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query observers: %w", err)
	}
	defer rows.Close()

	var observers []ObserverData
	for rows.Next() {
		var o ObserverData
		if err := rows.Scan(&o.Name, &o.Region, &o.Latitude, &o.Longitude, &o.Elevation, &o.Timezone); err != nil {
			return nil, fmt.Errorf("failed to scan observer: %w", err)
		}
		observers = append(observers, o)
	}
	return observers, rows.Err()
}

// GetObserver returns a single observer by name
func (s *SQLiteProvider) GetObserver(name string) (*ObserverData, error) {
	query := `
		SELECT name, region, latitude, longitude, elevation, timezone
		FROM observers WHERE name = ?
	`

	var o ObserverData
	err := s.db.QueryRow(query, name).Scan(&o.Name, &o.Region, &o.Latitude, &o.Longitude, &o.Elevation, &o.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("observer %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query observer %q: %w", name, err)
	}
	return &o, nil
}

// GetReportSettings returns the stored report settings, zero valued when
// none have been saved
func (s *SQLiteProvider) GetReportSettings() (*ReportData, error) {
	query := `
		SELECT output, sample_interval, format, depression, open_browser
		FROM report_settings WHERE id = 1
	`

	var r ReportData
	err := s.db.QueryRow(query).Scan(&r.Output, &r.Interval, &r.Format, &r.Depression, &r.OpenBrowser)
	if errors.Is(err, sql.ErrNoRows) {
		return &ReportData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report settings: %w", err)
	}
	return &r, nil
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM observers"); err != nil {
		return fmt.Errorf("failed to clear observers: %w", err)
	}

	for i := range configData.Observers {
		if err := s.insertObserver(tx, &configData.Observers[i], i); err != nil {
			return fmt.Errorf("failed to insert observer %s: %w", configData.Observers[i].Name, err)
		}
	}

	if err := s.upsertReportSettings(tx, &configData.Report); err != nil {
		return fmt.Errorf("failed to save report settings: %w", err)
	}

	return tx.Commit()
}

// AddObserver appends an observer after the existing ones
func (s *SQLiteProvider) AddObserver(o *ObserverData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRow("SELECT COALESCE(MAX(position) + 1, 0) FROM observers").Scan(&next); err != nil {
		return fmt.Errorf("failed to find observer position: %w", err)
	}
	if err := s.insertObserver(tx, o, next); err != nil {
		return fmt.Errorf("failed to insert observer %s: %w", o.Name, err)
	}
	return tx.Commit()
}

// DeleteObserver removes an observer by name
func (s *SQLiteProvider) DeleteObserver(name string) error {
	result, err := s.db.Exec("DELETE FROM observers WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete observer %q: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("observer %q not found", name)
	}
	return nil
}

func (s *SQLiteProvider) insertObserver(tx *sql.Tx, o *ObserverData, position int) error {
	query := `
		INSERT INTO observers (name, region, latitude, longitude, elevation, timezone, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query, o.Name, o.Region, o.Latitude, o.Longitude, o.Elevation, o.Timezone, position)
	return err
}

func (s *SQLiteProvider) upsertReportSettings(tx *sql.Tx, r *ReportData) error {
	query := `
		INSERT OR REPLACE INTO report_settings (id, output, sample_interval, format, depression, open_browser, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, datetime('now'))
	`
	_, err := tx.Exec(query, r.Output, r.Interval, r.Format, r.Depression, r.OpenBrowser)
	return err
}
