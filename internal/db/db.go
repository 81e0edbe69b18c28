package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver

	"hrportal/internal/model"
)

// Dialect names the SQL backend behind the record store.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DetectDialect picks a dialect from the DSN shape.
func DetectDialect(dsn string) Dialect {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres
	case strings.HasPrefix(dsn, "file:"), strings.HasPrefix(dsn, "sqlite:"),
		strings.HasSuffix(dsn, ".db"), dsn == ":memory:":
		return DialectSQLite
	default:
		return DialectMySQL
	}
}

// Open returns a connected GORM DB instance for dsn.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	dialect := DetectDialect(dsn)
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	case DialectSQLite:
		dialector = sqlite.New(sqlite.Config{
			DriverName: "sqlite",
			DSN:        strings.TrimPrefix(dsn, "sqlite:"),
		})
	default:
		dialector = mysql.Open(dsn)
	}

	gormDB, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// A single connection keeps in-memory databases shared and serialises writes.
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gormDB, nil
}

// exactMatchColumns are looked up with = and must not fold case or accents.
var exactMatchColumns = []struct {
	table, column string
	size          int
}{
	{"users", "identifier", 64},
	{"documents", "owner_identifier", 64},
	{"documents", "blob_ref", 255},
}

// Migrate creates or updates the users and documents tables.
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(&model.User{}, &model.Document{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if gormDB.Dialector.Name() == string(DialectMySQL) {
		return binaryCollation(gormDB)
	}
	return nil
}

// binaryCollation moves the lookup columns off MySQL's default
// case-insensitive collation, so unique indexes and equality accept only
// exact identifiers.
func binaryCollation(gormDB *gorm.DB) error {
	for _, c := range exactMatchColumns {
		stmt := fmt.Sprintf("ALTER TABLE `%s` MODIFY `%s` VARCHAR(%d) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL", c.table, c.column, c.size)
		if err := gormDB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("collate %s.%s: %w", c.table, c.column, err)
		}
	}
	return nil
}

// Reset drops both tables. Missing tables are ignored.
func Reset(gormDB *gorm.DB) error {
	for _, table := range []interface{}{&model.Document{}, &model.User{}} {
		if err := gormDB.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
