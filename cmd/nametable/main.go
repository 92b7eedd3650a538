package main

import (
	"context"
	"database/sql"

	"pokerec/deckworker/config"
	"pokerec/deckworker/internal/browser"
	"pokerec/deckworker/internal/nametable"
	"pokerec/deckworker/logger"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
)

// One-shot batch job: scrape the reference wiki page and rebuild the
// name_mapping table. Independent of the deck crawl worker.
func main() {
	godotenv.Load()
	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if cfg.NameTableURL == "" {
		log.Fatal().Msg("NAME_TABLE_URL must not be empty")
	}
	if cfg.NameDBPath == "" {
		log.Fatal().Msg("NAME_DB_PATH must not be empty")
	}

	db, err := sql.Open("sqlite3", cfg.NameDBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.NameDBPath).Msg("Failed to open name database")
	}
	defer db.Close()

	// Unguarded fetcher: a single page load does not need a rate-limit key
	builder := nametable.NewBuilder(browser.NewHTTPFetcher("", nil, 0), db, cfg.NameTableURL, "")

	inserted, err := builder.Run(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Name table build failed")
	}

	log.Info().
		Int("rows", inserted).
		Str("path", cfg.NameDBPath).
		Msg("Name table build finished")
}
