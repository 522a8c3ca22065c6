package pantry

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "already canonical", raw: "tomato", want: "tomato"},
		{name: "trim and lowercase", raw: "  Olive Oil  ", want: "olive oil"},
		{name: "brackets", raw: "[tomatoes]", want: "tomatoes"},
		{name: "parentheses", raw: "((garlic))", want: "garlic"},
		{name: "quotes", raw: `"'egg'"`, want: "egg"},
		{name: "trailing commas", raw: "cheese,,", want: "cheese"},
		{name: "internal whitespace", raw: "extra \t virgin\n\nolive   oil", want: "extra virgin olive oil"},
		{name: "list element from a raw dump", raw: "['roma tomatoes',", want: "roma tomatoes"},
		{name: "quoted brackets", raw: `"(tomato)"`, want: "tomato"},
		{name: "bracket inside comma", raw: "(tomato),", want: "tomato"},
		{name: "padding inside brackets", raw: "[ 'pasta' ]", want: "pasta"},
		{name: "decomposed accent", raw: "Jalapen\u0303o", want: "jalape\u00f1o"},
		{name: "empty", raw: "", want: ""},
		{name: "only decorations", raw: ` [("'',)] `, want: ""},
		{name: "inner punctuation kept", raw: "salt (kosher)", want: "salt (kosher"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.raw))
		})
	}
}

func TestNormalizeKey_Idempotent(t *testing.T) {
	faker := gofakeit.New(42)
	decorations := []string{"", "[", "(", `"`, "'", " ", "\t", ",", "]", ")"}

	inputs := []string{`"(tomato)"`, "(tomato),", "[ 'pasta' ]", " ,tomato, "}
	for i := 0; i < 500; i++ {
		raw := faker.RandomString(decorations) +
			faker.RandomString(decorations) +
			faker.Word() + faker.RandomString([]string{"", " ", "  "}) + faker.Word() +
			faker.RandomString(decorations) +
			faker.RandomString(decorations) +
			faker.RandomString(decorations)
		inputs = append(inputs, raw)
	}

	for _, raw := range inputs {
		once := NormalizeKey(raw)
		assert.Equal(t, once, NormalizeKey(once), "raw input %q", raw)
	}
}

func TestNormalizeKeys(t *testing.T) {
	keys := NormalizeKeys([]string{"Tomato", " tomato ", "", "[]", "Pasta", "PASTA,", "egg"})

	assert.Equal(t, []string{"tomato", "pasta", "egg"}, keys)
}

func TestParseDifficulty(t *testing.T) {
	assert.Equal(t, DifficultyEasy, *ParseDifficulty("Easy"))
	assert.Equal(t, DifficultyHard, *ParseDifficulty(" hard "))
	assert.Nil(t, ParseDifficulty("unknown"))
	assert.Nil(t, ParseDifficulty(""))
}
