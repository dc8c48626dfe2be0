package db

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	embeddedmigrations "github.com/terraincognita07/ereceipt/migrations"
	"gorm.io/gorm"
)

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	database := openSQLiteForTest(t, filepath.Join(t.TempDir(), "ereceipt-clean.db"))

	for _, table := range []string{"users", "banks", "receipts", "sessions"} {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist after migrations", table)
		}
	}

	receiptColumns := loadTableColumns(t, database, "receipts")
	for _, column := range []string{"user_id", "bank_id", "receipt_image_path", "amount", "status", "approved_by", "approved_at", "rejection_reason"} {
		if _, ok := receiptColumns[column]; !ok {
			t.Fatalf("expected receipts.%s column", column)
		}
	}

	assertAllMigrationsApplied(t, database)
}

func TestOpenSQLiteMigrationBootstrapIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "ereceipt-idempotent.db")

	firstOpen, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("first open sqlite: %v", err)
	}
	firstRecords := loadMigrationRecords(t, firstOpen)

	firstSQLDB, err := firstOpen.DB()
	if err != nil {
		t.Fatalf("first open sql db: %v", err)
	}
	if err := firstSQLDB.Close(); err != nil {
		t.Fatalf("close first sql db: %v", err)
	}

	secondOpen := openSQLiteForTest(t, databasePath)
	secondRecords := loadMigrationRecords(t, secondOpen)

	if !reflect.DeepEqual(firstRecords, secondRecords) {
		t.Fatalf("expected migration records to stay unchanged between boots, before=%v after=%v", firstRecords, secondRecords)
	}
}

func TestLoadMigrationsOrdersByNumericVersion(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"010_later.sql":  {Data: []byte("SELECT 1")},
		"002_second.sql": {Data: []byte("SELECT 1")},
		"001_first.sql":  {Data: []byte("SELECT 1")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := loadMigrations(files)
	if err != nil {
		t.Fatalf("loadMigrations returned error: %v", err)
	}

	names := make([]string, 0, len(migrations))
	for _, migration := range migrations {
		names = append(names, migration.Name)
	}
	want := []string{"001_first.sql", "002_second.sql", "010_later.sql"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("migration order = %v, want %v", names, want)
	}
}

func TestLoadMigrationsRejectsDuplicateVersions(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1")},
		"001_b.sql": {Data: []byte("SELECT 1")},
	}
	if _, err := loadMigrations(files); err == nil || !strings.Contains(err.Error(), "duplicate migration version") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestSplitSQLStatementsDropsEmptyParts(t *testing.T) {
	t.Parallel()

	statements := splitSQLStatements("CREATE TABLE a (id INTEGER);\n\n ;CREATE TABLE b (id INTEGER);  ")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(statements), statements)
	}
	if statements[1] != "CREATE TABLE b (id INTEGER)" {
		t.Fatalf("unexpected second statement %q", statements[1])
	}
}

func openSQLiteForTest(t *testing.T, databasePath string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return database
}

func assertAllMigrationsApplied(t *testing.T, database *gorm.DB) {
	t.Helper()

	migrations, err := loadMigrations(embeddedmigrations.Files)
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	expected := make([]string, 0, len(migrations))
	for _, migration := range migrations {
		expected = append(expected, migration.Version)
	}

	records := loadMigrationRecords(t, database)
	actual := make([]string, 0, len(records))
	for _, record := range records {
		actual = append(actual, record.Version)
	}

	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("unexpected applied migration versions: expected=%v actual=%v", expected, actual)
	}
}

type migrationRecord struct {
	Version   string `gorm:"column:version"`
	Name      string `gorm:"column:name"`
	AppliedAt string `gorm:"column:applied_at"`
}

func loadMigrationRecords(t *testing.T, database *gorm.DB) []migrationRecord {
	t.Helper()

	records := make([]migrationRecord, 0)
	if err := database.Raw(
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC`,
	).Scan(&records).Error; err != nil {
		t.Fatalf("load migration records: %v", err)
	}
	return records
}

func loadTableColumns(t *testing.T, database *gorm.DB, tableName string) map[string]struct{} {
	t.Helper()

	var rows []struct {
		Name string `gorm:"column:name"`
	}
	if err := database.Raw(`SELECT name FROM pragma_table_info(?)`, tableName).Scan(&rows).Error; err != nil {
		t.Fatalf("load table columns for %s: %v", tableName, err)
	}

	columns := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		columns[strings.ToLower(row.Name)] = struct{}{}
	}
	return columns
}
