package vocab

import (
	"maps"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unknown is the index returned for tokens missing from a Vocabulary.
const Unknown = 0

// Vocabulary is an immutable token -> index mapping. Index 0 is reserved
// for unknown tokens.
type Vocabulary struct {
	ids map[string]int
}

// New copies ids into a new Vocabulary. Later changes to ids are not seen.
func New(ids map[string]int) *Vocabulary {
	return &Vocabulary{ids: maps.Clone(ids)}
}

// Default returns the vocabulary the toy demo is wired with.
func Default() *Vocabulary {
	return New(map[string]int{
		"a":   1,
		"cat": 2,
		"on":  3,
		"mat": 4,
	})
}

// ID maps a token to its index, Unknown when absent.
func (v *Vocabulary) ID(token string) int {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return Unknown
}

// Size is the number of rows an embedding table needs for this vocabulary,
// including the unknown slot.
func (v *Vocabulary) Size() int {
	return len(v.ids) + 1
}

// Tokens lists the known tokens sorted by index.
func (v *Vocabulary) Tokens() []string {
	tokens := slices.Collect(maps.Keys(v.ids))
	slices.SortFunc(tokens, func(a, b string) int {
		return v.ids[a] - v.ids[b]
	})
	return tokens
}

// Encode lowercases text, splits it into word tokens and maps every token
// through the vocabulary. An empty or blank text yields an empty sequence.
func (v *Vocabulary) Encode(text string) []int {
	lowered := cases.Lower(language.Und).String(text)
	tokens := Tokenize(lowered)
	ids := make([]int, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, v.ID(t))
	}
	return ids
}
