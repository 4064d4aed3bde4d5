//go:build ignore

// inspect_schema prints the DDL gorm generates for the content schema on sqlite.
//
//	go run tools/inspect_schema.go
package main

import (
	"fmt"
	"log"

	"github.com/localnerve/tuskfish/internal/config"
	"github.com/localnerve/tuskfish/internal/database"
)

func main() {
	db, err := database.Connect(&config.Config{DBType: "sqlite", DBDatabase: ":memory:", DBConnectionLimit: 1})
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
		var ddl []string
		db.Raw("SELECT sql FROM sqlite_master WHERE tbl_name = ? AND sql IS NOT NULL", table).Scan(&ddl)
		for _, stmt := range ddl {
			fmt.Println(stmt + ";")
		}
	}
}
