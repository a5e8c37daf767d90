package migrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"migrations/001_create_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT);")},
		"migrations/001_create_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
		"migrations/002_add_color.up.sql":        {Data: []byte("ALTER TABLE widgets ADD COLUMN color TEXT;")},
		"migrations/002_add_color.down.sql":      {Data: []byte("ALTER TABLE widgets DROP COLUMN color;")},
		"migrations/README.md":                   {Data: []byte("not a migration")},
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMigrations(t *testing.T) {
	p := NewFSProvider(testFS(), "migrations", "")

	migrations, err := p.GetMigrations()
	if err != nil {
		t.Fatalf("GetMigrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("got %d migrations, expected 2", len(migrations))
	}

	tests := []struct {
		version int
		name    string
	}{
		{1, "create widgets"},
		{2, "add color"},
	}
	for i, tt := range tests {
		m := migrations[i]
		if m.Version != tt.version || m.Name != tt.name {
			t.Errorf("migration %d = {%d %q}, expected {%d %q}", i, m.Version, m.Name, tt.version, tt.name)
		}
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d is missing SQL", m.Version)
		}
	}
}

func TestMigrateUpAndDown(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, NewFSProvider(testFS(), "migrations", ""))

	var applied []string
	m.Logf = func(format string, args ...interface{}) {
		applied = append(applied, format)
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		t.Fatalf("GetPendingMigrations: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending migrations, expected 2", len(pending))
	}

	if err := m.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if v, _ := m.GetCurrentVersion(); v != 2 {
		t.Errorf("version after MigrateUp = %d, expected 2", v)
	}
	if len(applied) != 2 {
		t.Errorf("Logf called %d times, expected 2", len(applied))
	}
	if _, err := db.Exec("INSERT INTO widgets (name, color) VALUES ('a', 'red')"); err != nil {
		t.Errorf("insert after migration: %v", err)
	}

	// Idempotent
	if err := m.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}
	if pending, _ := m.GetPendingMigrations(); len(pending) != 0 {
		t.Errorf("got %d pending migrations after MigrateUp, expected 0", len(pending))
	}

	if err := m.MigrateTo(1); err != nil {
		t.Fatalf("MigrateTo(1): %v", err)
	}
	if v, _ := m.GetCurrentVersion(); v != 1 {
		t.Errorf("version after MigrateTo(1) = %d, expected 1", v)
	}

	if err := m.MigrateDown(0); err != nil {
		t.Fatalf("MigrateDown(0): %v", err)
	}
	if v, _ := m.GetCurrentVersion(); v != 0 {
		t.Errorf("version after MigrateDown(0) = %d, expected 0", v)
	}
	if _, err := db.Exec("SELECT 1 FROM widgets"); err == nil {
		t.Error("widgets table still exists after rolling back every migration")
	}
}

func TestMigrateDownRejectsHigherTarget(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, NewFSProvider(testFS(), "migrations", "custom_versions"))
	if err := m.MigrateTo(1); err != nil {
		t.Fatalf("MigrateTo(1): %v", err)
	}
	if err := m.MigrateDown(1); err == nil {
		t.Error("MigrateDown to the current version succeeded, expected an error")
	}
}

func TestMissingDownSQL(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_only_up.up.sql": {Data: []byte("CREATE TABLE t (id INTEGER);")},
	}
	m := NewMigrator(openTestDB(t), NewFSProvider(fsys, "m", ""))
	if err := m.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if err := m.MigrateDown(0); err == nil {
		t.Error("rolling back a migration without down SQL succeeded, expected an error")
	}
}
