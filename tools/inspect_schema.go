package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/localnerve/paperdb/data"
	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/database"
	"go.uber.org/zap"
)

// Prints the tables AutoMigrate creates on an in-memory SQLite database,
// followed by the search index DDL each dialect gets.
func main() {
	dbType := flag.String("type", "sqlite-pure", "sqlite driver to migrate with (sqlite or sqlite-pure)")
	flag.Parse()

	cfg := &config.Config{DB: config.DBConfig{Type: *dbType, Database: ":memory:", LogLevel: "silent"}}
	db, err := database.Connect(cfg, zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)
	}

	for _, dialect := range []string{"postgres", "mysql", "sqlite", "sqlserver"} {
		fmt.Printf("\n=== Search index: %s ===\n", dialect)
		if ddl := data.SearchIndexDDL(dialect); ddl != "" {
			fmt.Println(ddl)
		} else {
			fmt.Println("(none, containment search)")
		}
	}
}
