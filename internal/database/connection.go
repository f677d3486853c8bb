// connection.go
//
// A versioned paper submission and peer-review workflow service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of paperdb.
// paperdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// paperdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with paperdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"fmt"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/localnerve/paperdb/data"
	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/logging"
	"github.com/localnerve/paperdb/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

// SearchIndexName is the full-text index created over paper_versions where the dialect supports one.
const SearchIndexName = "idx_paper_versions_search"

// Dialector builds the gorm dialector for the configured DB_TYPE
func Dialector(cfg *config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.AppUser,
			cfg.AppPassword,
			cfg.Host,
			cfg.Port,
			cfg.Database,
		)
		return mysql.Open(dsn), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.Host,
			cfg.AppUser,
			cfg.AppPassword,
			cfg.Database,
			cfg.Port,
		)
		return postgres.Open(dsn), nil

	case "sqlite":
		// For SQLite, Database is the file path
		return sqlite.Open(cfg.Database), nil

	case "sqlite-pure":
		// cgo-free SQLite, same file semantics
		return puresqlite.Open(cfg.Database), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.AppUser,
			cfg.AppPassword,
			cfg.Host,
			cfg.Port,
			cfg.Database,
		)
		return sqlserver.Open(dsn), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(&cfg.DB)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.NewGormLogger(logger, cfg.DB.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	// SQLite serializes writers; one connection keeps transactions from tripping SQLITE_BUSY
	limit := cfg.DB.AppConnectionLimit
	if db.Dialector.Name() == "sqlite" {
		limit = 1
	}
	sqlDB.SetMaxOpenConns(limit)
	sqlDB.SetMaxIdleConns(max(limit/2, 1))

	logger.Info("connected to database",
		zap.String("type", cfg.DB.Type),
		zap.String("database", cfg.DB.Database),
	)

	return db, nil
}

// AutoMigrate runs automatic migrations for all models, then creates the
// dialect specific full-text search index if it is missing.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	ddl := data.SearchIndexDDL(db.Dialector.Name())
	if ddl == "" {
		return nil
	}
	if db.Migrator().HasIndex(&models.PaperVersion{}, SearchIndexName) {
		return nil
	}
	if err := db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("create search index: %w", err)
	}
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
