package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pokerec/deckworker/config"
	"pokerec/deckworker/internal/browser"
	"pokerec/deckworker/internal/carddb"
	"pokerec/deckworker/internal/categorizer"
	"pokerec/deckworker/internal/crawler"
	"pokerec/deckworker/logger"
	"pokerec/deckworker/services/cache"
	"pokerec/deckworker/services/docstore"
	"pokerec/deckworker/services/ingest"
	"pokerec/deckworker/services/publisher"
	"pokerec/deckworker/services/worker"

	"github.com/joho/godotenv"
)

// rateLimitBlock is how long a source stays blocked after throttling us
const rateLimitBlock = 500 * time.Second

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("gym_day_range", cfg.GymDayRange).
		Int("city_result_page_limit", cfg.CityResultPageLimit).
		Dur("crawl_interval", cfg.CrawlInterval).
		Msg("Starting deck worker")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Load the card reference database once for the whole session
	resolver, err := services.Cards.LoadResolver(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load card reference database")
	}
	log.Info().Int("cards", resolver.Len()).Msg("Card reference database loaded")

	crawlers := createCrawlers(&cfg, resolver, services.Cache)
	pipeline := ingest.NewPipeline(services.Docs, buildCategorizer(ctx, &cfg, resolver, services.Cache), services.Publisher)

	w := worker.NewWorker(ctx, crawlers, pipeline, services.Publisher, cfg.CrawlInterval)

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker completion
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Cards     *carddb.DB
	Docs      docstore.Store
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Docs != nil {
		s.Docs.Close()
	}
	if s.Cards != nil {
		s.Cards.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	cards, err := carddb.Open(cfg.CardDBPath)
	if err != nil {
		return nil, err
	}
	services.Cards = cards
	logger.Info("Opened card reference database at %s", cfg.CardDBPath)

	docs, err := docstore.NewSQLiteStore(cfg.DocDBPath)
	if err != nil {
		services.Cleanup()
		return nil, err
	}
	services.Docs = docs
	logger.Info("Opened document store at %s", cfg.DocDBPath)

	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Redis record stream is optional
	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStreamPrefix,
			cfg.RedisStreamMaxLength,
		)
		logger.Info("Connected to Redis at %s (DB: %d, Stream prefix: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStreamPrefix)
	}

	return services, nil
}

// createCrawlers wires one crawler per league, each with its own
// rate-limit guard
func createCrawlers(cfg *config.Config, resolver *carddb.Resolver, cacheSvc cache.CacheService) []crawler.Crawler {
	gymFetcher := browser.NewHTTPFetcher("gym_rate_limited", cacheSvc, rateLimitBlock)
	cityFetcher := browser.NewHTTPFetcher("city_rate_limited", cacheSvc, rateLimitBlock)

	return []crawler.Crawler{
		crawler.NewGymCrawler(gymFetcher, resolver, cfg.GymListURL,
			cfg.GymStartPage, cfg.GymNumPages, cfg.GymDayRange),
		crawler.NewCityCrawler(cityFetcher, resolver, cfg.CityResultURL, cfg.DeckBaseURL,
			cfg.CityResultPageLimit, cfg.CityEventPageLimit, cfg.CityDeckPageLimit),
	}
}

// buildCategorizer crawls the published deck recipes and derives the
// archetype classifier from them. A disabled or failed recipe crawl leaves
// decks uncategorized; classification never blocks ingestion.
func buildCategorizer(ctx context.Context, cfg *config.Config, resolver *carddb.Resolver, cacheSvc cache.CacheService) categorizer.Categorizer {
	if cfg.RecipeNumPages <= 0 {
		return nil
	}

	fetcher := browser.NewHTTPFetcher("recipe_rate_limited", cacheSvc, rateLimitBlock)
	rc := crawler.NewRecipeCrawler(fetcher, resolver, cfg.RecipeListURL,
		1, cfg.RecipeNumPages, cfg.RecipeDeckPageLimit)

	recipeDecks, err := rc.Crawl(ctx)
	if err != nil {
		logger.Default.Warn().Err(err).Msg("Recipe crawl failed, decks stay uncategorized")
		return nil
	}
	if len(recipeDecks) == 0 {
		logger.Default.Warn().Msg("No deck recipes found, decks stay uncategorized")
		return nil
	}

	logger.Info("Loaded %d deck recipes for classification", len(recipeDecks))
	return categorizer.NewRecipeCategorizer(recipeDecks, cfg.RecipeMinSimilarity)
}
