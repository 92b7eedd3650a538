package crawler

import (
	"context"
	"fmt"
	"strings"

	"pokerec/deckworker/helpers"
	"pokerec/deckworker/internal/browser"
	"pokerec/deckworker/internal/carddb"
	"pokerec/deckworker/internal/dates"
	"pokerec/deckworker/logger"

	"github.com/PuerkitoBio/goquery"
)

// cityEventMarker filters the mixed event feed down to city league results
const cityEventMarker = "シティリーグ"

// CityCrawler walks the official tournament result listing. Three caps
// bound the crawl independently: result listing pages, event pages across
// the whole run, and deck detail pages per event.
type CityCrawler struct {
	Fetcher         browser.Fetcher
	Resolver        *carddb.Resolver
	ResultURL       string
	DeckBaseURL     string
	ResultPageLimit int
	EventPageLimit  int
	DeckPageLimit   int

	log *logger.Logger
}

// NewCityCrawler creates a city league crawler. deckBaseURL is the deck
// viewer used to rebuild detail URLs from bare deck codes.
func NewCityCrawler(fetcher browser.Fetcher, resolver *carddb.Resolver, resultURL, deckBaseURL string, resultPageLimit, eventPageLimit, deckPageLimit int) *CityCrawler {
	return &CityCrawler{
		Fetcher:         fetcher,
		Resolver:        resolver,
		ResultURL:       resultURL,
		DeckBaseURL:     deckBaseURL,
		ResultPageLimit: resultPageLimit,
		EventPageLimit:  eventPageLimit,
		DeckPageLimit:   deckPageLimit,
		log:             logger.ForCrawler(LeagueCity),
	}
}

// League returns the league tag
func (c *CityCrawler) League() string {
	return LeagueCity
}

// Crawl iterates result listing pages, visits each city league event found
// on them, and extracts up to DeckPageLimit decks per event. Skippable page
// failures are recorded and the crawl continues; an EventPageLimit of zero
// crawls no events.
func (c *CityCrawler) Crawl(ctx context.Context) (*Result, error) {
	res := &Result{}
	eventCount := 0

	for page := 1; page <= c.ResultPageLimit; page++ {
		url := fmt.Sprintf("%s?page=%d", c.ResultURL, page)
		doc, err := c.Fetcher.Fetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			if !skippable(err) {
				return res, err
			}
			c.log.Warn().Str("url", url).Err(err).Msg("result page fetch failed, skipping")
			res.Failures = append(res.Failures, PageFailure{URL: url, Err: err.Error()})
			continue
		}

		events := cityEventLinks(doc)
		if len(events) == 0 {
			c.log.Info().Int("page", page).Msg("result listing exhausted")
			break
		}

		for _, eventURL := range events {
			if eventCount >= c.EventPageLimit {
				c.log.Info().Int("events", eventCount).Msg("event page limit reached")
				return res, nil
			}
			if err := c.crawlEventPage(ctx, eventURL, res); err != nil {
				return res, err
			}
			eventCount++
		}
	}
	return res, nil
}

// cityEventLinks returns the event page URLs of the city league entries on
// one result listing page
func cityEventLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("a.eventListItem").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(".title").Text())
		if !strings.Contains(title, cityEventMarker) {
			return
		}
		if href, ok := s.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})
	return links
}

// crawlEventPage extracts the event date and up to DeckPageLimit decks from
// one event result page, appending them as a flat dated batch. Only
// unclassified errors are returned; skippable ones become failures.
func (c *CityCrawler) crawlEventPage(ctx context.Context, url string, res *Result) error {
	doc, err := c.Fetcher.Fetch(ctx, url)
	if err != nil {
		if !skippable(err) {
			return err
		}
		c.log.Warn().Str("url", url).Err(err).Msg("event page fetch failed, skipping")
		res.Failures = append(res.Failures, PageFailure{URL: url, Err: err.Error()})
		return nil
	}

	date := dates.Normalize(strings.TrimSpace(doc.Find(".date-day").First().Text()))

	var decks []Deck
	for _, href := range eventDeckLinks(doc, c.DeckPageLimit) {
		deckURL := c.deckPageURL(href)
		deckDoc, err := c.Fetcher.Fetch(ctx, deckURL)
		if err != nil {
			if !skippable(err) {
				return err
			}
			c.log.Warn().Str("url", deckURL).Err(err).Msg("deck page fetch failed, skipping")
			res.Failures = append(res.Failures, PageFailure{URL: deckURL, Err: err.Error()})
			continue
		}
		deck := ExtractDeck(deckDoc, c.Resolver)
		if deck == nil || deck.Empty() {
			c.log.Debug().Str("url", deckURL).Msg("no deck found on page")
			continue
		}
		decks = append(decks, *deck)
	}

	if len(decks) > 0 {
		res.Batches = append(res.Batches, DeckBatch{Date: date, Decks: decks})
	}
	return nil
}

// deckPageURL resolves a ranking-table link to a fetchable deck page.
// Absolute links pass through; relative ones carry only the deck code in
// their last path segment and are rebuilt on the deck viewer base URL.
func (c *CityCrawler) deckPageURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	trimmed := strings.Trim(href, "/")
	code, err := helpers.GetSplitPart(trimmed, "/", strings.Count(trimmed, "/"))
	if err != nil || code == "" {
		return href
	}
	return c.DeckBaseURL + code + "/"
}

// eventDeckLinks returns up to limit deck detail URLs from the ranking
// table of an event page
func eventDeckLinks(doc *goquery.Document, limit int) []string {
	var links []string
	doc.Find(".c-rankTable-row td.deck a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(links) >= limit {
			return false
		}
		if href, ok := s.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
		return true
	})
	return links
}
