// Package categorizer derives an archetype label for a deck. Classification
// is a pluggable capability of the ingestion pipeline; the default
// implementation labels nothing.
package categorizer

import (
	"sort"

	"pokerec/deckworker/internal/crawler"
)

// Uncategorized is the sentinel label for decks no categorizer claims
const Uncategorized = "uncategorized"

// Categorizer assigns a category label to a deck, or Uncategorized
type Categorizer interface {
	Classify(deck *crawler.Deck) string
}

// Noop is the default categorizer; it labels every deck Uncategorized
type Noop struct{}

// Classify implements Categorizer
func (Noop) Classify(*crawler.Deck) string {
	return Uncategorized
}

// Recipe is a named reference deck group. Its feature is the card set
// shared by all decks published under that archetype name.
type Recipe struct {
	Name    string
	Feature []string
}

// RecipeCategorizer matches a deck against reference recipes by pokemon
// line overlap (intersection over union). Below MinSimilarity the deck
// stays Uncategorized.
type RecipeCategorizer struct {
	Recipes       []Recipe
	MinSimilarity float64
}

// NewRecipeCategorizer builds a categorizer from reference recipe decks:
// each recipe's feature is the intersection of its decks' pokemon features.
func NewRecipeCategorizer(recipeDecks map[string][]crawler.Deck, minSimilarity float64) *RecipeCategorizer {
	var names []string
	for name := range recipeDecks {
		names = append(names, name)
	}
	sort.Strings(names)

	recipes := make([]Recipe, 0, len(names))
	for _, name := range names {
		feature := intersectionFeature(recipeDecks[name])
		if len(feature) == 0 {
			continue
		}
		recipes = append(recipes, Recipe{Name: name, Feature: feature})
	}
	return &RecipeCategorizer{Recipes: recipes, MinSimilarity: minSimilarity}
}

// Classify returns the name of the closest recipe, or Uncategorized when
// nothing clears the similarity floor
func (c *RecipeCategorizer) Classify(deck *crawler.Deck) string {
	feature := deckFeature(deck)
	if len(feature) == 0 {
		return Uncategorized
	}

	best := Uncategorized
	highest := c.MinSimilarity
	for _, recipe := range c.Recipes {
		if sim := iou(feature, recipe.Feature); sim > highest {
			highest = sim
			best = recipe.Name
		}
	}
	return best
}

// deckFeature reduces a deck to its sorted unique pokemon identifiers
func deckFeature(deck *crawler.Deck) []string {
	seen := map[string]bool{}
	var feature []string
	for _, id := range deck.Pokemons {
		if !seen[id] {
			seen[id] = true
			feature = append(feature, id)
		}
	}
	sort.Strings(feature)
	return feature
}

// intersectionFeature returns the pokemon identifiers common to every deck
func intersectionFeature(decks []crawler.Deck) []string {
	if len(decks) == 0 {
		return nil
	}
	common := map[string]bool{}
	for _, id := range deckFeature(&decks[0]) {
		common[id] = true
	}
	for i := 1; i < len(decks); i++ {
		next := map[string]bool{}
		for _, id := range deckFeature(&decks[i]) {
			if common[id] {
				next[id] = true
			}
		}
		common = next
	}

	feature := make([]string, 0, len(common))
	for id := range common {
		feature = append(feature, id)
	}
	sort.Strings(feature)
	return feature
}

// iou computes intersection over union of two identifier sets
func iou(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inA := map[string]bool{}
	for _, id := range a {
		inA[id] = true
	}
	intersection := 0
	for _, id := range b {
		if inA[id] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
