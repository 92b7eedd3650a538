package crawler

import (
	"context"
	"errors"

	pkgerrors "pokerec/deckworker/pkg/errors"
)

// League tags for the known sources. The tag set is open; storage keys
// collections by tag, so new leagues need no storage changes.
const (
	LeagueGym  = "gym"
	LeagueCity = "city"
)

// Deck groups the card entries of one player's list by role. Every list is
// ordered and non-nil; a role absent from the source page is an empty list.
type Deck struct {
	Pokemons   []string `json:"pokemons"`
	Tools      []string `json:"tools"`
	Supporters []string `json:"supporters"`
	Stadiums   []string `json:"stadiums"`
	Energies   []string `json:"energies"`
}

// NewDeck creates a deck with all role lists allocated
func NewDeck() *Deck {
	return &Deck{
		Pokemons:   []string{},
		Tools:      []string{},
		Supporters: []string{},
		Stadiums:   []string{},
		Energies:   []string{},
	}
}

// Empty reports whether no role list has any entry
func (d *Deck) Empty() bool {
	return len(d.Pokemons) == 0 && len(d.Tools) == 0 && len(d.Supporters) == 0 &&
		len(d.Stadiums) == 0 && len(d.Energies) == 0
}

// DeckBatch is one dated group of decks produced by a crawl. Venue carries
// the gym crawler's secondary grouping key and is empty for flat leagues.
type DeckBatch struct {
	Date  string
	Venue string
	Decks []Deck
}

// PageFailure records one page the crawl could not process. Failures are
// reported after the run instead of aborting it.
type PageFailure struct {
	URL string
	Err string
}

// Result is the output of one crawl run
type Result struct {
	Batches  []DeckBatch
	Failures []PageFailure
}

// skippable reports whether a page-level error may be recorded as a
// PageFailure and the crawl continued. Unclassified errors abort the run;
// only the pipeline taxonomy's transient types are safe to skip.
func skippable(err error) bool {
	var perr *pkgerrors.PipelineError
	return errors.As(err, &perr) && perr.IsSkippable()
}

// Crawler is the contract shared by the league crawlers
type Crawler interface {
	// League returns the league tag the crawler feeds
	League() string

	// Crawl walks the source's pages and returns dated deck batches
	Crawl(ctx context.Context) (*Result, error)
}
