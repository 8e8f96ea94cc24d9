package checks

import (
	ahocorasick "github.com/BobuSumisu/aho-corasick"
)

// hintTable matches a text against an ordered list of substrings. When more
// than one hint occurs, the one listed first in the table wins, so reports stay
// stable no matter where in the text each hint appears.
type hintTable struct {
	hints []string
	trie  *ahocorasick.Trie
}

func newHintTable(hints []string) *hintTable {
	t := &hintTable{}
	for _, h := range hints {
		if h != "" {
			t.hints = append(t.hints, h)
		}
	}
	if len(t.hints) > 0 {
		t.trie = ahocorasick.NewTrieBuilder().AddStrings(t.hints).Build()
	}
	return t
}

// First returns the earliest table entry contained in text.
func (t *hintTable) First(text string) (string, bool) {
	if t.trie == nil || text == "" {
		return "", false
	}
	best := -1
	for _, m := range t.trie.MatchString(text) {
		idx := int(m.Pattern())
		if best < 0 || idx < best {
			best = idx
		}
	}
	if best < 0 {
		return "", false
	}
	return t.hints[best], true
}
