package persist

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var ledgerSchema embed.FS

// RunMigrations brings the ledger schema up to date. goose wants a
// database/sql handle, so the pgx pool is adapted through stdlib for the
// duration of the run.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(ledgerSchema)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("ledger dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}
