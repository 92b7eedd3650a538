package crawler

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"pokerec/deckworker/internal/browser"
	"pokerec/deckworker/internal/carddb"
	"pokerec/deckworker/logger"

	"github.com/PuerkitoBio/goquery"
)

// recipeMarker filters the archive feed down to deck recipe articles
const recipeMarker = "デッキレシピ"

// recipeTitle extracts the archetype name from a bracketed article title,
// e.g. 【サーナイトex】デッキレシピ
var recipeTitle = regexp.MustCompile(`【(.*?)】`)

// RecipeCrawler walks the deck recipe archive and collects the published
// reference decks per archetype. Its output seeds deck classification; it
// feeds no league collection.
type RecipeCrawler struct {
	Fetcher       browser.Fetcher
	Resolver      *carddb.Resolver
	ListURL       string
	StartPage     int
	NumPages      int
	DeckPageLimit int

	log *logger.Logger
}

// NewRecipeCrawler creates a recipe crawler
func NewRecipeCrawler(fetcher browser.Fetcher, resolver *carddb.Resolver, listURL string, startPage, numPages, deckPageLimit int) *RecipeCrawler {
	return &RecipeCrawler{
		Fetcher:       fetcher,
		Resolver:      resolver,
		ListURL:       listURL,
		StartPage:     startPage,
		NumPages:      numPages,
		DeckPageLimit: deckPageLimit,
		log:           logger.ForCrawler("recipe"),
	}
}

// Crawl visits recipe listing pages and returns the extracted decks
// grouped by archetype name. Skippable page failures only cost that page;
// unclassified errors abort the run.
func (c *RecipeCrawler) Crawl(ctx context.Context) (map[string][]Deck, error) {
	recipes := map[string][]Deck{}

	for page := c.StartPage; page < c.StartPage+c.NumPages; page++ {
		url := c.ListURL + strconv.Itoa(page)
		doc, err := c.Fetcher.Fetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return recipes, ctx.Err()
			}
			if !skippable(err) {
				return recipes, err
			}
			c.log.Warn().Str("url", url).Err(err).Msg("recipe listing fetch failed, skipping")
			continue
		}

		entries := recipeEntries(doc)
		if len(entries) == 0 {
			c.log.Info().Int("page", page).Msg("recipe listing exhausted")
			break
		}

		for _, entry := range entries {
			decks, err := c.crawlRecipePage(ctx, entry.url)
			if err != nil {
				return recipes, err
			}
			if len(decks) > 0 {
				recipes[entry.name] = append(recipes[entry.name], decks...)
			}
		}
	}

	c.log.Info().Int("recipes", len(recipes)).Msg("recipe crawl finished")
	return recipes, nil
}

type recipeEntry struct {
	name string
	url  string
}

// recipeEntries extracts the recipe article links of one listing page.
// Entries whose title does not mark a deck recipe are ignored.
func recipeEntries(doc *goquery.Document) []recipeEntry {
	var entries []recipeEntry
	doc.Find("a.entry-card-wrap").Each(func(_ int, s *goquery.Selection) {
		title, _ := s.Attr("title")
		if !strings.Contains(title, recipeMarker) {
			return
		}
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		entries = append(entries, recipeEntry{name: recipeName(title), url: href})
	})
	return entries
}

// recipeName pulls the archetype out of the bracketed title, falling back
// to the whole title
func recipeName(title string) string {
	if m := recipeTitle.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	return title
}

// crawlRecipePage extracts up to DeckPageLimit decks linked from one
// recipe article
func (c *RecipeCrawler) crawlRecipePage(ctx context.Context, url string) ([]Deck, error) {
	doc, err := c.Fetcher.Fetch(ctx, url)
	if err != nil {
		if !skippable(err) {
			return nil, err
		}
		c.log.Warn().Str("url", url).Err(err).Msg("recipe page fetch failed, skipping")
		return nil, nil
	}

	var decks []Deck
	for _, deckURL := range recipeDeckLinks(doc, c.DeckPageLimit) {
		deckDoc, err := c.Fetcher.Fetch(ctx, deckURL)
		if err != nil {
			if !skippable(err) {
				return decks, err
			}
			c.log.Warn().Str("url", deckURL).Err(err).Msg("deck page fetch failed, skipping")
			continue
		}
		deck := ExtractDeck(deckDoc, c.Resolver)
		if deck == nil || deck.Empty() {
			c.log.Debug().Str("url", deckURL).Msg("no deck found on page")
			continue
		}
		decks = append(decks, *deck)
	}
	return decks, nil
}

// recipeDeckLinks returns up to limit deck detail URLs from the image
// captions of a recipe article
func recipeDeckLinks(doc *goquery.Document, limit int) []string {
	var links []string
	doc.Find(".wp-block-image figcaption.wp-element-caption a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
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
