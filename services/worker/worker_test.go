package worker

import (
	"context"
	"errors"
	"testing"

	"pokerec/deckworker/internal/crawler"
	pkgerrors "pokerec/deckworker/pkg/errors"
	"pokerec/deckworker/services/docstore"
	"pokerec/deckworker/services/ingest"

	"github.com/stretchr/testify/assert"
)

// mockCrawler implements the crawler.Crawler interface for testing
type mockCrawler struct {
	league   string
	result   *crawler.Result
	crawlErr error
}

var _ crawler.Crawler = (*mockCrawler)(nil)

func (m *mockCrawler) League() string { return m.league }

func (m *mockCrawler) Crawl(context.Context) (*crawler.Result, error) {
	return m.result, m.crawlErr
}

// countingStore implements docstore.Store in memory
type countingStore struct {
	docs map[string]int
}

var _ docstore.Store = (*countingStore)(nil)

func newCountingStore() *countingStore {
	return &countingStore{docs: map[string]int{}}
}

func (s *countingStore) Insert(_ context.Context, collection string, _ []byte) error {
	s.docs[collection]++
	return nil
}

func (s *countingStore) Drop(_ context.Context, collection string) error {
	delete(s.docs, collection)
	return nil
}

func (s *countingStore) DropAll(context.Context) error {
	s.docs = map[string]int{}
	return nil
}

func (s *countingStore) Count(_ context.Context, collection string) (int, error) {
	return s.docs[collection], nil
}

func (s *countingStore) Close() error { return nil }

func singleDeckResult(date, venue string) *crawler.Result {
	deck := crawler.NewDeck()
	deck.Pokemons = []string{"ピカチュウ"}
	return &crawler.Result{
		Batches: []crawler.DeckBatch{{Date: date, Venue: venue, Decks: []crawler.Deck{*deck}}},
	}
}

func TestWorkerSingleRunIngestsAllLeagues(t *testing.T) {
	store := newCountingStore()
	pipeline := ingest.NewPipeline(store, nil, nil)

	crawlers := []crawler.Crawler{
		&mockCrawler{league: crawler.LeagueGym, result: singleDeckResult("2024.04.06", "池袋")},
		&mockCrawler{league: crawler.LeagueCity, result: singleDeckResult("2024.03.20", "")},
	}

	w := NewWorker(context.Background(), crawlers, pipeline, nil, 0)
	assert.NoError(t, w.Start())

	assert.Equal(t, 1, store.docs["gym"])
	assert.Equal(t, 1, store.docs["city"])
}

func TestWorkerOneLeagueFailureDoesNotBlockOthers(t *testing.T) {
	store := newCountingStore()
	pipeline := ingest.NewPipeline(store, nil, nil)

	crawlers := []crawler.Crawler{
		&mockCrawler{league: crawler.LeagueGym, crawlErr: errors.New("source down")},
		&mockCrawler{league: crawler.LeagueCity, result: singleDeckResult("2024.03.20", "")},
	}

	w := NewWorker(context.Background(), crawlers, pipeline, nil, 0)
	assert.NoError(t, w.Start())

	// Gym crawl failed before its rebuild, so its snapshot is untouched
	assert.Equal(t, 0, store.docs["gym"])
	assert.Equal(t, 1, store.docs["city"])
}

func TestWorkerContinuesPastUnreachableSource(t *testing.T) {
	store := newCountingStore()
	pipeline := ingest.NewPipeline(store, nil, nil)

	crawlers := []crawler.Crawler{
		&mockCrawler{league: crawler.LeagueGym, crawlErr: pkgerrors.NewAutomation("https://gym.example", "blocked", nil)},
		&mockCrawler{league: crawler.LeagueCity, result: singleDeckResult("2024.03.20", "")},
	}

	w := NewWorker(context.Background(), crawlers, pipeline, nil, 0)
	assert.NoError(t, w.Start())

	assert.Equal(t, 0, store.docs["gym"])
	assert.Equal(t, 1, store.docs["city"])
}

func TestWorkerRebuildsBeforeIngest(t *testing.T) {
	store := newCountingStore()
	store.docs["gym"] = 5 // leftovers from a previous run
	pipeline := ingest.NewPipeline(store, nil, nil)

	crawlers := []crawler.Crawler{
		&mockCrawler{league: crawler.LeagueGym, result: singleDeckResult("2024.04.06", "池袋")},
	}

	w := NewWorker(context.Background(), crawlers, pipeline, nil, 0)
	assert.NoError(t, w.Start())

	assert.Equal(t, 1, store.docs["gym"])
}
