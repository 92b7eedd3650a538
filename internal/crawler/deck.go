package crawler

import (
	"strconv"
	"strings"

	"pokerec/deckworker/internal/carddb"

	"github.com/PuerkitoBio/goquery"
)

// Section headers of the deck list view. Each grid item starts with one of
// these followed by the card count, e.g. "ポケモン (11)".
const (
	sectionPokemon   = "ポケモン ("
	sectionTool      = "グッズ ("
	sectionSupporter = "サポート ("
	sectionStadium   = "スタジアム ("
	sectionEnergy    = "エネルギー ("
)

// ExtractDeck parses one fetched deck page into role lists. Pokemon
// identifiers carry name and card code ("name\ncode"); the code is
// canonicalized where the reference database knows the print and kept as
// printed otherwise. Malformed entries are skipped; a page with no card
// grid yields nil.
func ExtractDeck(doc *goquery.Document, resolver *carddb.Resolver) *Deck {
	items := doc.Find("#cardListView .Grid_item")
	if items.Length() == 0 {
		return nil
	}

	deck := NewDeck()
	items.Each(func(_ int, s *goquery.Selection) {
		lines := splitLines(s.Text())
		if len(lines) < 2 {
			return
		}
		header, body := lines[0], lines[1:]
		switch {
		case strings.Contains(header, sectionPokemon):
			deck.Pokemons = append(deck.Pokemons, parsePokemonEntries(body, resolver)...)
		case strings.Contains(header, sectionTool):
			deck.Tools = append(deck.Tools, parseTrainerEntries(body, resolver)...)
		case strings.Contains(header, sectionSupporter):
			deck.Supporters = append(deck.Supporters, parseTrainerEntries(body, resolver)...)
		case strings.Contains(header, sectionStadium):
			deck.Stadiums = append(deck.Stadiums, parseTrainerEntries(body, resolver)...)
		case strings.Contains(header, sectionEnergy):
			deck.Energies = append(deck.Energies, parseTrainerEntries(body, resolver)...)
		}
	})
	return deck
}

// parsePokemonEntries parses pokemon rows. The list view renders each card
// as four lines: name, expansion mark, collector number, count ("3枚").
// Mark and collector combine into the on-page card code; the identifier
// keeps both name and resolved code so reprints of one card collapse to
// one entry. A malformed group is skipped without touching its neighbors.
func parsePokemonEntries(lines []string, resolver *carddb.Resolver) []string {
	entries := []string{}
	for i := 0; i+3 < len(lines); i += 4 {
		name, mark, collector := lines[i], lines[i+1], lines[i+2]
		count, ok := parseCount(lines[i+3])
		if name == "" || mark == "" || collector == "" || !ok {
			continue
		}
		code := resolver.ResolveCard(name, mark+"-"+collector)
		id := name + "\n" + code
		for n := 0; n < count; n++ {
			entries = append(entries, id)
		}
	}
	return entries
}

// parseTrainerEntries parses trainer and energy rows of the form
// "クイックボール 3枚". A parenthesized suffix on the name (reprint
// annotations) is stripped before resolution.
func parseTrainerEntries(lines []string, resolver *carddb.Resolver) []string {
	entries := []string{}
	for _, line := range lines {
		idx := strings.LastIndexByte(line, ' ')
		if idx <= 0 {
			continue
		}
		count, ok := parseCount(line[idx+1:])
		if !ok {
			continue
		}
		name := stripParenSuffix(strings.TrimSpace(line[:idx]))
		if name == "" {
			continue
		}
		id := resolver.Resolve(name)
		for n := 0; n < count; n++ {
			entries = append(entries, id)
		}
	}
	return entries
}

// parseCount parses a count cell like "3枚"
func parseCount(s string) (int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "枚")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// stripParenSuffix drops everything from the first full-width or ASCII
// left parenthesis onward
func stripParenSuffix(name string) string {
	for _, paren := range []string{"（", "("} {
		if idx := strings.Index(name, paren); idx != -1 {
			name = name[:idx]
		}
	}
	return strings.TrimSpace(name)
}

// splitLines splits element text into trimmed, non-empty lines
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
