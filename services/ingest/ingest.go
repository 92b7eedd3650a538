package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"pokerec/deckworker/internal/categorizer"
	"pokerec/deckworker/internal/crawler"
	"pokerec/deckworker/internal/dates"
	"pokerec/deckworker/logger"
	"pokerec/deckworker/services/docstore"
	"pokerec/deckworker/services/publisher"
)

// DeckRecord is the persisted unit: one deck tagged with its normalized
// date and league. Records are written once and never mutated.
type DeckRecord struct {
	Date     string       `json:"date"`
	League   string       `json:"league"`
	Venue    string       `json:"venue,omitempty"`
	Deck     crawler.Deck `json:"deck"`
	Category string       `json:"category,omitempty"`
}

// Pipeline writes crawled deck batches into the per-league document
// collection. Inserts are append-only: ingesting the same batches twice
// doubles the records. Rebuild is the explicit pre-run clear.
type Pipeline struct {
	store       docstore.Store
	categorizer categorizer.Categorizer
	publisher   publisher.Publisher
	log         *logger.Logger
}

// NewPipeline creates an ingestion pipeline. A nil categorizer defaults to
// the no-op implementation; a nil publisher disables record announcements.
func NewPipeline(store docstore.Store, cat categorizer.Categorizer, pub publisher.Publisher) *Pipeline {
	if cat == nil {
		cat = categorizer.Noop{}
	}
	return &Pipeline{
		store:       store,
		categorizer: cat,
		publisher:   pub,
		log:         logger.ForIngest(),
	}
}

// Rebuild drops the league's collection so the following Ingest produces a
// full snapshot of this run's crawl
func (p *Pipeline) Rebuild(ctx context.Context, league string) error {
	if err := p.store.Drop(ctx, league); err != nil {
		return fmt.Errorf("rebuild %s: %w", league, err)
	}
	p.log.Info().Str("league", league).Msg("collection cleared for rebuild")
	return nil
}

// Ingest normalizes, classifies, and appends every deck of the given
// batches to the league's collection, returning the number of records
// written. Storage errors abort the run; publish errors are logged only.
func (p *Pipeline) Ingest(ctx context.Context, league string, batches []crawler.DeckBatch) (int, error) {
	inserted := 0
	for _, batch := range batches {
		date := dates.Normalize(batch.Date)
		for i := range batch.Decks {
			deck := batch.Decks[i]
			record := DeckRecord{
				Date:     date,
				League:   league,
				Venue:    batch.Venue,
				Deck:     deck,
				Category: p.categorizer.Classify(&deck),
			}

			body, err := json.Marshal(record)
			if err != nil {
				return inserted, fmt.Errorf("marshal record: %w", err)
			}
			if err := p.store.Insert(ctx, league, body); err != nil {
				return inserted, err
			}
			inserted++

			if p.publisher != nil {
				if err := p.publisher.Publish(league, body); err != nil {
					p.log.Warn().Str("league", league).Err(err).Msg("record publish failed")
				}
			}
		}
	}

	p.log.Info().
		Str("league", league).
		Int("records", inserted).
		Msg("ingest complete")
	return inserted, nil
}
