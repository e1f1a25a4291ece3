// famfin-seed ensures the baseline accounts, categories and the
// current-month budget exist. Safe to re-run; never deletes data.
package main

import (
	"context"
	"os"

	"famfin/internal/cli"
	"famfin/internal/core"
	"famfin/internal/seed"
)

func main() {
	logger := cli.SetupLogger("famfin-seed")
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	limit, err := core.ParseAmount(cfg.SeedBudgetLimit)
	if err != nil {
		logger.Error("Invalid seed budget limit", "value", cfg.SeedBudgetLimit, "error", err)
		os.Exit(1)
	}

	if err := seed.Run(context.Background(), repo, limit); err != nil {
		logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Seeding complete", "db", cfg.SQLiteDBPath)
}
