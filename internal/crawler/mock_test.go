package crawler

import (
	"context"
	"strings"

	pkgerrors "pokerec/deckworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// mockFetcher serves canned HTML by URL and records every fetch. broken
// URLs fail with a transient fetch error, unreliable ones with an error the
// taxonomy does not know.
type mockFetcher struct {
	pages      map[string]string
	broken     map[string]bool
	unreliable map[string]error
	visited    []string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		pages:      map[string]string{},
		broken:     map[string]bool{},
		unreliable: map[string]error{},
	}
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	m.visited = append(m.visited, url)
	if err, ok := m.unreliable[url]; ok {
		return nil, err
	}
	if m.broken[url] {
		return nil, pkgerrors.NewAutomation(url, "fetch failed", nil)
	}
	html, ok := m.pages[url]
	if !ok {
		return nil, pkgerrors.NewAutomation(url, "no such page", nil)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (m *mockFetcher) saw(url string) bool {
	for _, v := range m.visited {
		if v == url {
			return true
		}
	}
	return false
}

// deckPageHTML renders a minimal deck list view page
func deckPageHTML(sections ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="cardListView">`)
	for _, s := range sections {
		b.WriteString(`<div class="Grid_item">` + s + `</div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}
