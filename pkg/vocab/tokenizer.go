package vocab

import (
	"strings"

	"github.com/dlclark/regexp2"
)

type rule struct {
	re   *regexp2.Regexp
	repl string
}

func r(pattern, repl string) rule {
	return rule{re: regexp2.MustCompile(pattern, regexp2.None), repl: repl}
}

// Treebank-style word splitting rules, applied in order.
var (
	startingQuotes = []rule{
		r(`^"`, "``"),
		r("(``)", " $1 "),
		r(`([ (\[{<])("|'{2})`, "$1 `` "),
	}

	punctuation = []rule{
		r(`([^.])(\.)([\])}>"']*)\s*$`, "$1 $2 $3 "),
		r(`([:,])([^\d])`, " $1 $2"),
		r(`([:,])$`, " $1 "),
		r(`\.\.\.`, " ... "),
		r(`[;@#$%&]`, " $0 "),
		r(`[?!]`, " $0 "),
		r(`([^'])' `, "$1 ' "),
	}

	brackets = []rule{
		r(`[\]\[(){}<>]`, " $0 "),
		r(`--`, " -- "),
	}

	endingQuotes = []rule{
		r(`"`, " '' "),
		r(`(\S)('')`, "$1 $2 "),
		r(`([^' ])('[sS]|'[mM]|'[dD]|') `, "$1 $2 "),
		r(`([^' ])('ll|'LL|'re|'RE|'ve|'VE|n't|N'T) `, "$1 $2 "),
	}

	contractions = []rule{
		r(`(?i)\b(can)(?=not\b)(not)\b`, " $1 $2 "),
		r(`(?i)\b(d)('ye)\b`, " $1 $2 "),
		r(`(?i)\b(gim)(me)\b`, " $1 $2 "),
		r(`(?i)\b(gon)(na)\b`, " $1 $2 "),
		r(`(?i)\b(got)(ta)\b`, " $1 $2 "),
		r(`(?i)\b(lem)(me)\b`, " $1 $2 "),
		r(`(?i)\b(wan)(na)(?=\s)`, " $1 $2 "),
		r(`(?i) ('t)(is)\b`, " $1 $2 "),
		r(`(?i) ('t)(was)\b`, " $1 $2 "),
	}
)

func apply(text string, rules []rule) string {
	for _, rl := range rules {
		out, err := rl.re.Replace(text, rl.repl, -1, -1)
		if err != nil {
			// only match timeouts fail, and none are configured
			continue
		}
		text = out
	}
	return text
}

// Tokenize splits text into word tokens: punctuation is split off,
// contractions are separated ("don't" -> "do", "n't"), and numbers such as
// "1,000" stay whole. Case is preserved.
func Tokenize(text string) []string {
	text = apply(text, startingQuotes)
	text = apply(text, punctuation)
	text = apply(text, brackets)
	text = " " + text + " "
	text = apply(text, endingQuotes)
	text = apply(text, contractions)
	return strings.Fields(text)
}
