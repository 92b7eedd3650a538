package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Source site URLs
	GymListURL    string
	CityResultURL string
	DeckBaseURL   string
	NameTableURL  string

	// Gym crawler limits
	GymStartPage int
	GymNumPages  int
	GymDayRange  int

	// City crawler limits
	CityResultPageLimit int
	CityEventPageLimit  int
	CityDeckPageLimit   int

	// Recipe crawler; zero pages disables deck classification
	RecipeListURL       string
	RecipeNumPages      int
	RecipeDeckPageLimit int
	RecipeMinSimilarity float64

	// Store paths
	CardDBPath string
	DocDBPath  string
	NameDBPath string

	// Memcache configuration (fetch rate-limit guard)
	MemcacheAddr string

	// Redis configuration (optional record stream, disabled when addr is empty)
	RedisAddr            string
	RedisDB              int
	RedisStreamPrefix    string
	RedisStreamMaxLength int

	// Worker configuration; zero interval means a single run
	CrawlInterval time.Duration

	// Suggestions server
	SuggestAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	gymStartPage, _ := strconv.Atoi(getEnv("GYM_START_PAGE", "1"))
	gymNumPages, _ := strconv.Atoi(getEnv("GYM_NUM_PAGES", "3"))
	gymDayRange, _ := strconv.Atoi(getEnv("GYM_DAY_RANGE", "7"))
	resultPageLimit, _ := strconv.Atoi(getEnv("CITY_RESULT_PAGE_LIMIT", "10"))
	eventPageLimit, _ := strconv.Atoi(getEnv("CITY_EVENT_PAGE_LIMIT", "100"))
	deckPageLimit, _ := strconv.Atoi(getEnv("CITY_DECK_PAGE_LIMIT", "1"))
	recipeNumPages, _ := strconv.Atoi(getEnv("RECIPE_NUM_PAGES", "1"))
	recipeDeckPageLimit, _ := strconv.Atoi(getEnv("RECIPE_DECK_PAGE_LIMIT", "10"))
	recipeMinSimilarity, _ := strconv.ParseFloat(getEnv("RECIPE_MIN_SIMILARITY", "0"), 64)
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "0"))

	return Config{
		GymListURL:           getEnv("GYM_LIST_URL", "https://pokecabook.com/archives/category/tournament/jim-battle/page/"),
		CityResultURL:        getEnv("CITY_RESULT_URL", "https://players.pokemon-card.com/event/result/list"),
		DeckBaseURL:          getEnv("DECK_BASE_URL", "https://www.pokemon-card.com/deck/confirm.html/deckID/"),
		NameTableURL:         getEnv("NAME_TABLE_URL", "https://wiki.52poke.com/wiki/%E5%AE%9D%E5%8F%AF%E6%A2%A6%E5%88%97%E8%A1%A8"),
		GymStartPage:         gymStartPage,
		GymNumPages:          gymNumPages,
		GymDayRange:          gymDayRange,
		CityResultPageLimit:  resultPageLimit,
		CityEventPageLimit:   eventPageLimit,
		CityDeckPageLimit:    deckPageLimit,
		RecipeListURL:        getEnv("RECIPE_LIST_URL", "https://pokecabook.com/archives/category/deck-recipe/page/"),
		RecipeNumPages:       recipeNumPages,
		RecipeDeckPageLimit:  recipeDeckPageLimit,
		RecipeMinSimilarity:  recipeMinSimilarity,
		CardDBPath:           getEnv("CARD_DB_PATH", "db/ptcg_card.db"),
		DocDBPath:            getEnv("DOC_DB_PATH", "db/decks.db"),
		NameDBPath:           getEnv("NAME_DB_PATH", "db/name_mapping.db"),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStreamPrefix:    getEnv("REDIS_STREAM_PREFIX", "decks"),
		RedisStreamMaxLength: redisStreamMaxLen,
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		SuggestAddr:          getEnv("SUGGEST_ADDR", ":5000"),
		Environment:          getEnv("DECKWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the crawlers cannot run with
func (c *Config) Validate() error {
	if c.GymStartPage < 1 {
		return fmt.Errorf("GYM_START_PAGE must be >= 1, got %d", c.GymStartPage)
	}
	if c.GymNumPages < 1 {
		return fmt.Errorf("GYM_NUM_PAGES must be >= 1, got %d", c.GymNumPages)
	}
	if c.GymDayRange < 1 {
		return fmt.Errorf("GYM_DAY_RANGE must be >= 1, got %d", c.GymDayRange)
	}
	if c.CityResultPageLimit < 1 {
		return fmt.Errorf("CITY_RESULT_PAGE_LIMIT must be >= 1, got %d", c.CityResultPageLimit)
	}
	if c.CityDeckPageLimit < 0 {
		return fmt.Errorf("CITY_DECK_PAGE_LIMIT must be >= 0, got %d", c.CityDeckPageLimit)
	}
	if c.RecipeNumPages < 0 {
		return fmt.Errorf("RECIPE_NUM_PAGES must be >= 0, got %d", c.RecipeNumPages)
	}
	if c.CardDBPath == "" {
		return fmt.Errorf("CARD_DB_PATH must not be empty")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
