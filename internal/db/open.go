package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/terraincognita07/ereceipt/internal/models"
	embeddedmigrations "github.com/terraincognita07/ereceipt/migrations"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Options struct {
	Driver string
	Path   string
	DSN    string
}

// Open connects to the configured store and brings its schema up to date.
// SQLite uses the embedded SQL migrations; server databases are migrated from
// the model definitions.
func Open(options Options) (*gorm.DB, error) {
	switch driver := strings.ToLower(strings.TrimSpace(options.Driver)); driver {
	case "", DriverSQLite:
		return OpenSQLite(options.Path)
	case DriverPostgres:
		return openServerDatabase(driver, postgres.Open(options.DSN), options.DSN)
	case DriverMySQL:
		dsn := withMySQLParseTime(options.DSN)
		return openServerDatabase(driver, mysql.Open(dsn), dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", options.Driver)
	}
}

func OpenSQLite(dbPath string) (*gorm.DB, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(database, embeddedmigrations.Files); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, nil
}

func openServerDatabase(driver string, dialector gorm.Dialector, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s requires DATABASE_URL", driver)
	}

	database, err := gorm.Open(dialector, newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("open %s pool: %w", driver, err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := database.AutoMigrate(
		&models.User{},
		&models.Bank{},
		&models.Receipt{},
		&models.Session{},
	); err != nil {
		return nil, fmt.Errorf("migrate %s schema: %w", driver, err)
	}

	return database, nil
}

func newGormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  true,
			},
		),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func withMySQLParseTime(dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" || strings.Contains(trimmed, "parseTime=") {
		return trimmed
	}
	if strings.Contains(trimmed, "?") {
		return trimmed + "&parseTime=true"
	}
	return trimmed + "?parseTime=true"
}
