package data

import (
	_ "embed"
)

//go:embed initdb/postgres/search-index.sql
var InitdbPostgresSearchIndex string

//go:embed initdb/mysql/search-index.sql
var InitdbMySQLSearchIndex string

// SearchIndexDDL returns the full-text index statement for a gorm dialector
// name, or "" when the dialect searches without one.
func SearchIndexDDL(dialect string) string {
	switch dialect {
	case "postgres":
		return InitdbPostgresSearchIndex
	case "mysql":
		return InitdbMySQLSearchIndex
	default:
		return ""
	}
}
