package crawler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"pokerec/deckworker/internal/browser"
	"pokerec/deckworker/internal/carddb"
	"pokerec/deckworker/internal/dates"
	"pokerec/deckworker/logger"

	"github.com/PuerkitoBio/goquery"
)

// GymCrawler walks the gym battle archive. Listing pages are numbered from
// StartPage and ordered newest first; crawling stops early once an entry
// date falls out of the trailing DayRange window.
type GymCrawler struct {
	Fetcher   browser.Fetcher
	Resolver  *carddb.Resolver
	ListURL   string
	StartPage int
	NumPages  int
	DayRange  int

	// now is injected for tests
	now func() time.Time
	log *logger.Logger
}

// NewGymCrawler creates a gym crawler
func NewGymCrawler(fetcher browser.Fetcher, resolver *carddb.Resolver, listURL string, startPage, numPages, dayRange int) *GymCrawler {
	return &GymCrawler{
		Fetcher:   fetcher,
		Resolver:  resolver,
		ListURL:   listURL,
		StartPage: startPage,
		NumPages:  numPages,
		DayRange:  dayRange,
		now:       time.Now,
		log:       logger.ForCrawler(LeagueGym),
	}
}

// League returns the league tag
func (c *GymCrawler) League() string {
	return LeagueGym
}

// Crawl visits listing pages in order, extracts the venue-grouped decks of
// each in-window entry, and stops at the first entry older than the window.
// A skippable page failure is recorded and the crawl moves on; unclassified
// errors abort the run.
func (c *GymCrawler) Crawl(ctx context.Context) (*Result, error) {
	res := &Result{}
	cutoff := c.now().AddDate(0, 0, -c.DayRange)

	for page := c.StartPage; page < c.StartPage+c.NumPages; page++ {
		url := c.ListURL + strconv.Itoa(page)
		doc, err := c.Fetcher.Fetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			if !skippable(err) {
				return res, err
			}
			c.log.Warn().Str("url", url).Err(err).Msg("listing page fetch failed, skipping")
			res.Failures = append(res.Failures, PageFailure{URL: url, Err: err.Error()})
			continue
		}

		entries := listingEntries(doc)
		if len(entries) == 0 {
			c.log.Info().Int("page", page).Msg("listing exhausted")
			break
		}

		for _, entry := range entries {
			date := dates.Normalize(entry.date)
			if olderThan(date, cutoff) {
				c.log.Info().
					Str("date", date).
					Int("page", page).
					Msg("entry outside day-range window, stopping crawl")
				return res, nil
			}
			if err := c.crawlGymPage(ctx, entry.url, date, res); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

type listingEntry struct {
	url  string
	date string
}

// listingEntries extracts the dated archive links of one listing page
func listingEntries(doc *goquery.Document) []listingEntry {
	var entries []listingEntry
	doc.Find("a.entry-card-wrap").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		entries = append(entries, listingEntry{
			url:  href,
			date: strings.TrimSpace(s.Find(".entry-date").Text()),
		})
	})
	return entries
}

// crawlGymPage extracts every deck linked from one gym archive page and
// appends one batch per venue to the result. Only unclassified errors are
// returned; skippable ones become failures.
func (c *GymCrawler) crawlGymPage(ctx context.Context, url, date string, res *Result) error {
	doc, err := c.Fetcher.Fetch(ctx, url)
	if err != nil {
		if !skippable(err) {
			return err
		}
		c.log.Warn().Str("url", url).Err(err).Msg("gym page fetch failed, skipping")
		res.Failures = append(res.Failures, PageFailure{URL: url, Err: err.Error()})
		return nil
	}

	byVenue := map[string][]Deck{}
	var venues []string
	for _, ref := range gymDeckRefs(doc) {
		deckDoc, err := c.Fetcher.Fetch(ctx, ref.deckURL)
		if err != nil {
			if !skippable(err) {
				return err
			}
			c.log.Warn().Str("url", ref.deckURL).Err(err).Msg("deck page fetch failed, skipping")
			res.Failures = append(res.Failures, PageFailure{URL: ref.deckURL, Err: err.Error()})
			continue
		}
		deck := ExtractDeck(deckDoc, c.Resolver)
		if deck == nil || deck.Empty() {
			c.log.Debug().Str("url", ref.deckURL).Msg("no deck found on page")
			continue
		}
		if _, seen := byVenue[ref.venue]; !seen {
			venues = append(venues, ref.venue)
		}
		byVenue[ref.venue] = append(byVenue[ref.venue], *deck)
	}

	for _, venue := range venues {
		res.Batches = append(res.Batches, DeckBatch{Date: date, Venue: venue, Decks: byVenue[venue]})
	}
	return nil
}

type gymDeckRef struct {
	venue   string
	deckURL string
}

// gymDeckRefs pairs the venue headings of a gym page with the deck links
// below them. Pages occasionally render more captions than headings; the
// unmatched tail is dropped rather than failing the page.
func gymDeckRefs(doc *goquery.Document) []gymDeckRef {
	var venues []string
	doc.Find(".wp-block-heading.has-medium-font-size:not(.has-text-align-center) span").
		Each(func(_ int, s *goquery.Selection) {
			venues = append(venues, strings.TrimSpace(s.Text()))
		})

	var urls []string
	doc.Find(".wp-element-caption a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			urls = append(urls, href)
		}
	})

	n := len(venues)
	if len(urls) < n {
		n = len(urls)
	}
	refs := make([]gymDeckRef, 0, n)
	for i := 0; i < n; i++ {
		refs = append(refs, gymDeckRef{venue: venues[i], deckURL: urls[i]})
	}
	return refs
}

// olderThan reports whether a normalized date is strictly before the cutoff.
// Dates that never normalized stay in the window; pass-through strings
// cannot justify stopping the crawl.
func olderThan(normalized string, cutoff time.Time) bool {
	t, err := time.Parse("2006.01.02", normalized)
	if err != nil {
		return false
	}
	return t.Before(cutoff.Truncate(24 * time.Hour))
}
