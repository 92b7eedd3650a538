package categorizer

import (
	"testing"

	"pokerec/deckworker/internal/crawler"

	"github.com/stretchr/testify/assert"
)

func deckWith(pokemons ...string) crawler.Deck {
	d := crawler.NewDeck()
	d.Pokemons = pokemons
	return *d
}

func TestNoopClassify(t *testing.T) {
	d := deckWith("サーフゴーex")
	assert.Equal(t, Uncategorized, Noop{}.Classify(&d))
}

func TestRecipeCategorizerPicksBestMatch(t *testing.T) {
	c := NewRecipeCategorizer(map[string][]crawler.Deck{
		"サーフゴー": {
			deckWith("サーフゴーex", "コレクレー", "かがやくゲッコウガ"),
			deckWith("サーフゴーex", "コレクレー", "マナフィ"),
		},
		"リザードン": {
			deckWith("リザードンex", "ヒトカゲ", "ピジョットex"),
		},
	}, 0.1)

	d := deckWith("サーフゴーex", "コレクレー", "チャデス")
	assert.Equal(t, "サーフゴー", c.Classify(&d))

	d2 := deckWith("リザードンex", "ヒトカゲ", "ピジョットex")
	assert.Equal(t, "リザードン", c.Classify(&d2))
}

func TestRecipeCategorizerIntersectionFeature(t *testing.T) {
	// かがやくゲッコウガ and マナフィ differ between the recipe decks, so
	// only the shared core identifies the archetype
	c := NewRecipeCategorizer(map[string][]crawler.Deck{
		"サーフゴー": {
			deckWith("サーフゴーex", "コレクレー", "かがやくゲッコウガ"),
			deckWith("サーフゴーex", "コレクレー", "マナフィ"),
		},
	}, 0.1)

	assert.Len(t, c.Recipes, 1)
	assert.Equal(t, []string{"コレクレー", "サーフゴーex"}, c.Recipes[0].Feature)
}

func TestRecipeCategorizerFallsBackToUncategorized(t *testing.T) {
	c := NewRecipeCategorizer(map[string][]crawler.Deck{
		"サーフゴー": {deckWith("サーフゴーex", "コレクレー")},
	}, 0.1)

	d := deckWith("ミライドンex", "モココ")
	assert.Equal(t, Uncategorized, c.Classify(&d))

	empty := crawler.NewDeck()
	assert.Equal(t, Uncategorized, c.Classify(empty))
}
