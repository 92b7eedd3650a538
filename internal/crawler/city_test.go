package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	cityResultURL = "https://players.example/event/result/list"
	deckBaseURL   = "https://deck.example/confirm/deckID/"
)

func cityResultHTML(events ...[2]string) string {
	html := `<html><body>`
	for _, e := range events {
		html += `<a class="eventListItem" href="` + e[0] + `"><span class="title">` + e[1] + `</span></a>`
	}
	return html + `</body></html>`
}

func cityEventHTML(date string, deckURLs ...string) string {
	html := `<html><body><span class="date-day">` + date + `</span><table>`
	for _, u := range deckURLs {
		html += `<tr class="c-rankTable-row"><td class="deck"><a href="` + u + `">デッキ</a></td></tr>`
	}
	return html + `</table></body></html>`
}

func TestCityCrawlerFiltersAndLimitsDeckPages(t *testing.T) {
	f := newMockFetcher()
	c := NewCityCrawler(f, nil, cityResultURL, deckBaseURL, 1, 100, 2)

	f.pages[cityResultURL+"?page=1"] = cityResultHTML(
		[2]string{"https://players.example/event/1", "シティリーグ シーズン2"},
		[2]string{"https://players.example/event/2", "トレーナーズリーグ"},
	)
	f.pages["https://players.example/event/1"] = cityEventHTML("2024年03月20日(水)",
		"https://deck.example/c1", "https://deck.example/c2", "https://deck.example/c3")
	f.pages["https://deck.example/c1"] = deckPageHTML("ポケモン (1)\nピカチュウ\nSVHK\n001/053\n1枚")
	f.pages["https://deck.example/c2"] = deckPageHTML("ポケモン (1)\nミュウ\nS8b\n250/184\n1枚")

	res, err := c.Crawl(context.Background())
	assert.NoError(t, err)

	// Non-city event skipped entirely
	assert.False(t, f.saw("https://players.example/event/2"))

	// Deck page cap of 2 leaves the third ranking row unvisited
	assert.False(t, f.saw("https://deck.example/c3"))

	assert.Len(t, res.Batches, 1)
	assert.Equal(t, "2024.03.20", res.Batches[0].Date)
	assert.Equal(t, "", res.Batches[0].Venue)
	assert.Len(t, res.Batches[0].Decks, 2)
}

func TestCityCrawlerBuildsDeckURLFromCode(t *testing.T) {
	f := newMockFetcher()
	c := NewCityCrawler(f, nil, cityResultURL, deckBaseURL, 1, 100, 1)

	f.pages[cityResultURL+"?page=1"] = cityResultHTML(
		[2]string{"https://players.example/event/1", "シティリーグ"},
	)
	// The ranking table links the deck by code only
	f.pages["https://players.example/event/1"] = cityEventHTML("2024年03月20日(水)", "/deck/2SXUSR-h31cri")
	f.pages[deckBaseURL+"2SXUSR-h31cri/"] = deckPageHTML("ポケモン (1)\nピカチュウ\nSVHK\n001/053\n1枚")

	res, err := c.Crawl(context.Background())
	assert.NoError(t, err)

	assert.True(t, f.saw(deckBaseURL+"2SXUSR-h31cri/"))
	assert.Len(t, res.Batches, 1)
}

func TestCityCrawlerEventPageLimit(t *testing.T) {
	f := newMockFetcher()
	c := NewCityCrawler(f, nil, cityResultURL, deckBaseURL, 5, 1, 1)

	f.pages[cityResultURL+"?page=1"] = cityResultHTML(
		[2]string{"https://players.example/event/1", "シティリーグ"},
		[2]string{"https://players.example/event/2", "シティリーグ"},
	)
	f.pages["https://players.example/event/1"] = cityEventHTML("2024年03月20日(水)", "https://deck.example/c1")
	f.pages["https://deck.example/c1"] = deckPageHTML("ポケモン (1)\nピカチュウ\nSVHK\n001/053\n1枚")

	res, err := c.Crawl(context.Background())
	assert.NoError(t, err)

	assert.False(t, f.saw("https://players.example/event/2"))
	assert.False(t, f.saw(cityResultURL+"?page=2"))
	assert.Len(t, res.Batches, 1)
}

func TestCityCrawlerZeroEventLimitCrawlsNothing(t *testing.T) {
	f := newMockFetcher()
	c := NewCityCrawler(f, nil, cityResultURL, deckBaseURL, 1, 0, 1)

	f.pages[cityResultURL+"?page=1"] = cityResultHTML(
		[2]string{"https://players.example/event/1", "シティリーグ"},
	)

	res, err := c.Crawl(context.Background())
	assert.NoError(t, err)

	// The cap applies before any event is visited
	assert.False(t, f.saw("https://players.example/event/1"))
	assert.Empty(t, res.Batches)
}

func TestCityCrawlerSkipsFailedEventPage(t *testing.T) {
	f := newMockFetcher()
	c := NewCityCrawler(f, nil, cityResultURL, deckBaseURL, 1, 100, 1)

	f.pages[cityResultURL+"?page=1"] = cityResultHTML(
		[2]string{"https://players.example/event/bad", "シティリーグ"},
		[2]string{"https://players.example/event/good", "シティリーグ"},
	)
	f.broken["https://players.example/event/bad"] = true
	f.pages["https://players.example/event/good"] = cityEventHTML("2024年03月23日(土)", "https://deck.example/ok")
	f.pages["https://deck.example/ok"] = deckPageHTML("ポケモン (1)\nピカチュウ\nSVHK\n001/053\n1枚")

	res, err := c.Crawl(context.Background())
	assert.NoError(t, err)

	assert.Len(t, res.Failures, 1)
	assert.Equal(t, "https://players.example/event/bad", res.Failures[0].URL)
	assert.Len(t, res.Batches, 1)
	assert.Equal(t, "2024.03.23", res.Batches[0].Date)
}

func TestCityCrawlerAbortsOnUnclassifiedError(t *testing.T) {
	f := newMockFetcher()
	c := NewCityCrawler(f, nil, cityResultURL, deckBaseURL, 1, 100, 1)

	f.pages[cityResultURL+"?page=1"] = cityResultHTML(
		[2]string{"https://players.example/event/1", "シティリーグ"},
		[2]string{"https://players.example/event/2", "シティリーグ"},
	)
	f.unreliable["https://players.example/event/1"] = errors.New("tls handshake failure")

	res, err := c.Crawl(context.Background())
	assert.Error(t, err)

	// Errors the taxonomy cannot classify stop the run instead of being
	// silently recorded
	assert.Empty(t, res.Failures)
	assert.False(t, f.saw("https://players.example/event/2"))
}

func TestCityCrawlerStopsOnEmptyResultPage(t *testing.T) {
	f := newMockFetcher()
	c := NewCityCrawler(f, nil, cityResultURL, deckBaseURL, 3, 100, 1)

	f.pages[cityResultURL+"?page=1"] = cityResultHTML()

	res, err := c.Crawl(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, res.Batches)
	assert.False(t, f.saw(cityResultURL+"?page=2"))
}
