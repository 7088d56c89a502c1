// Package events appends one audit record per provider fetch.
package events

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

const DefaultTable = "fetch_weather_history"

func quoteTable(table string) string {
	if table == "" {
		table = DefaultTable
	}
	return pgx.Identifier{table}.Sanitize()
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	"city_name" TEXT NOT NULL,
	"timestamp" BIGINT NOT NULL,
	"file_path" TEXT NOT NULL,
	PRIMARY KEY ("city_name", "timestamp")
)`, table)
}

// insertSQL overwrites file_path for a repeated (city_name, timestamp) so a
// duplicate event never fails the append.
func insertSQL(table, p1, p2, p3 string) string {
	return fmt.Sprintf(`INSERT INTO %s ("city_name", "timestamp", "file_path") VALUES (%s, %s, %s)
ON CONFLICT ("city_name", "timestamp") DO UPDATE SET "file_path" = excluded."file_path"`, table, p1, p2, p3)
}
