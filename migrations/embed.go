package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS holds the goose SQL migrations
//
//go:embed *.sql
var FS embed.FS

// Setup points goose at the embedded migrations and the ClickHouse dialect
func Setup() error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("clickhouse"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration
func Up(db *sql.DB) error {
	if err := Setup(); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
