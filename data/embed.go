package data

import (
	_ "embed"
)

// InitdbMariaDBTables is the MariaDB/MySQL DDL for every Tuskfish table.
//
//go:embed initdb/mariadb/001-ddl-tables.sql
var InitdbMariaDBTables string
