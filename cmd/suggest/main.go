package main

import (
	"database/sql"

	"pokerec/deckworker/config"
	"pokerec/deckworker/internal/suggest"
	"pokerec/deckworker/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
)

// Card name autocomplete server backed by the card reference database.
func main() {
	godotenv.Load()
	logger.Init()
	log := logger.ForServer()

	cfg := config.LoadConfig()
	if cfg.CardDBPath == "" {
		log.Fatal().Msg("CARD_DB_PATH must not be empty")
	}

	db, err := sql.Open("sqlite3", cfg.CardDBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CardDBPath).Msg("Failed to open card database")
	}
	defer db.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	suggest.NewHandler(suggest.NewRepo(db)).RegisterRoutes(router.Group("/api"))

	log.Info().Str("addr", cfg.SuggestAddr).Msg("Suggestions server listening")
	if err := router.Run(cfg.SuggestAddr); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}
