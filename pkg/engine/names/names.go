// Package names finds capitalized words that are likely person names.
//
// The heuristic is deliberately loose: every capitalized word that does not
// open a sentence is reported unless it is a weekday, a month or "I".
package names

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	wordPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

var excluded = map[string]struct{}{
	"I": {},
	"Monday": {}, "Tuesday": {}, "Wednesday": {}, "Thursday": {},
	"Friday": {}, "Saturday": {}, "Sunday": {},
	"January": {}, "February": {}, "March": {}, "April": {}, "May": {}, "June": {},
	"July": {}, "August": {}, "September": {}, "October": {}, "November": {}, "December": {},
}

// Extract returns the distinct name candidates in text, sorted.
func Extract(text string) []string {
	seen := make(map[string]struct{})
	for _, sentence := range sentenceSplit.Split(text, -1) {
		words := wordPattern.FindAllString(sentence, -1)
		for i, w := range words {
			if i == 0 || !isCandidate(w) {
				continue
			}
			seen[w] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func isCandidate(word string) bool {
	if utf8.RuneCountInString(word) < 2 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(word)
	if !unicode.IsUpper(first) {
		return false
	}
	_, skip := excluded[word]
	return !skip
}
