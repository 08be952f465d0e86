// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis turns text into index terms. The same Analyzer runs over
// document contents at index time and over keywords at query time, so both
// sides agree on what a term is.
package analysis

import (
	"strings"
	"unicode"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/porter"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxTermLen drops tokens that are almost certainly sequences, hashes or
// collapsed tables rather than words.
const maxTermLen = 64

// englishStopWords is the classic English stop set used by Lucene's
// EnglishAnalyzer.
var englishStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "such": true, "that": true, "the": true, "their": true,
	"then": true, "there": true, "these": true, "they": true, "this": true,
	"to": true, "was": true, "will": true, "with": true,
}

// Analyzer tokenizes, lowercases, folds diacritics, removes stop words and
// stems. It is safe for concurrent use.
type Analyzer struct {
	stopWords map[string]bool
	stem      bool
}

// English returns the analyzer used for collections and queries.
func English() *Analyzer {
	return &Analyzer{stopWords: englishStopWords, stem: true}
}

// Analyze returns the terms of text in order, repeats included.
func (a *Analyzer) Analyze(text string) []string {
	var terms []string
	for _, tok := range tokenize(fold(text)) {
		tok = strings.TrimSuffix(tok, "'s")
		tok = strings.Trim(tok, "'")
		if tok == "" || len(tok) > maxTermLen || a.stopWords[tok] {
			continue
		}
		if a.stem {
			tok = stem(tok)
		}
		terms = append(terms, tok)
	}
	return terms
}

// Frequencies returns each distinct term of text with its count, and the
// total number of terms.
func (a *Analyzer) Frequencies(text string) (map[string]int, int) {
	terms := a.Analyze(text)
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return tf, len(terms)
}

// Unique returns the distinct terms of texts in first-seen order.
func (a *Analyzer) Unique(texts ...string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, text := range texts {
		for _, t := range a.Analyze(text) {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// fold lowercases text, strips combining marks ("Café" → "cafe") and
// normalizes typographic apostrophes.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(strings.ReplaceAll(folded, "’", "'"))
}

// tokenize splits on every rune that is not a letter, digit or apostrophe.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func stem(word string) string {
	env := snowballstem.NewEnv(word)
	porter.Stem(env)
	return env.Current()
}
