// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keyword reduces a natural-language question to its salient terms.
//
// Extraction is local and deterministic:
//  1. Split on whitespace, punctuation and symbols
//  2. Lowercase
//  3. Drop stop words, words shorter than two characters, and words without letters
//  4. Drop repeats, keeping the first occurrence
//
// "What foods are recommended to manage inflammation?" yields
// [foods recommended manage inflammation].
package keyword

import (
	"regexp"
	"strings"
	"unicode"
)

var splitter = regexp.MustCompile(`[\s\p{P}\p{S}]+`)

// Extractor extracts keywords from queries.
type Extractor struct {
	stopWords map[string]bool
	minLength int
}

// New returns an Extractor using the built-in English stop list.
func New() *Extractor {
	return &Extractor{stopWords: defaultStopWords, minLength: 2}
}

// Extract returns the keywords of query in query order. It never returns nil.
func (e *Extractor) Extract(query string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, tok := range splitter.Split(query, -1) {
		word := strings.ToLower(tok)
		if !e.keep(word) || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
	}
	return out
}

// Extract runs the default Extractor.
func Extract(query string) []string {
	return New().Extract(query)
}

func (e *Extractor) keep(word string) bool {
	if len([]rune(word)) < e.minLength || e.stopWords[word] {
		return false
	}
	for _, r := range word {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// defaultStopWords holds question words, auxiliaries, pronouns, determiners,
// prepositions and conjunctions that carry no topical weight.
var defaultStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true, "nor": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "being": true,
	"am": true, "have": true, "has": true, "had": true, "having": true,
	"do": true, "does": true, "did": true, "doing": true,
	"will": true, "would": true, "could": true, "should": true, "may": true, "might": true,
	"must": true, "shall": true, "can": true,
	"i": true, "you": true, "he": true, "she": true, "it": true, "we": true, "they": true,
	"me": true, "him": true, "her": true, "us": true, "them": true,
	"my": true, "your": true, "his": true, "its": true, "our": true, "their": true,
	"myself": true, "yourself": true, "itself": true, "themselves": true,
	"this": true, "that": true, "these": true, "those": true,
	"what": true, "which": true, "who": true, "whom": true, "whose": true,
	"where": true, "when": true, "why": true, "how": true,
	"all": true, "any": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"no": true, "not": true, "only": true, "own": true, "same": true, "so": true,
	"than": true, "too": true, "very": true, "just": true, "also": true,
	"now": true, "here": true, "there": true,
	"in": true, "on": true, "at": true, "by": true, "for": true, "with": true, "of": true,
	"about": true, "against": true, "between": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "above": true, "below": true,
	"to": true, "from": true, "up": true, "down": true, "out": true, "off": true,
	"over": true, "under": true, "again": true, "further": true, "then": true, "once": true,
	"as": true, "if": true, "because": true, "until": true, "while": true,
}
