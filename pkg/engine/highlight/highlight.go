// Package highlight marks person mentions inside entry text with inline HTML.
package highlight

import (
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// KnownPerson is a person the owner already tracks.
type KnownPerson struct {
	ID   int64
	Name string
}

// Result is the annotated text and the known people that were found in it.
type Result struct {
	Text        string
	KnownByName map[string]int64
}

type span struct {
	start, end int
	known      bool
	personID   int64
}

// Highlight wraps every whole-word, case-insensitive occurrence of a known
// person's name, then of each remaining candidate name. Known people are
// matched first and in input order; an occurrence is only ever wrapped once.
// Text outside the mentions is HTML escaped.
func Highlight(text string, known []KnownPerson, candidates []string) Result {
	res := Result{KnownByName: make(map[string]int64)}
	var spans []span

	for _, p := range known {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		added := false
		for _, loc := range findWord(text, name) {
			if overlaps(spans, loc[0], loc[1]) {
				continue
			}
			spans = append(spans, span{start: loc[0], end: loc[1], known: true, personID: p.ID})
			added = true
		}
		if _, dup := res.KnownByName[name]; added && !dup {
			res.KnownByName[name] = p.ID
		}
	}

	for _, name := range candidates {
		if name == "" || isKnownMatch(res.KnownByName, name) {
			continue
		}
		for _, loc := range findWord(text, name) {
			if overlaps(spans, loc[0], loc[1]) {
				continue
			}
			spans = append(spans, span{start: loc[0], end: loc[1]})
		}
	}

	res.Text = render(text, spans)
	return res
}

func isKnownMatch(known map[string]int64, name string) bool {
	for k := range known {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// findWord returns byte ranges of name in text where the match is not
// glued to another letter, digit or underscore on either side.
func findWord(text, name string) [][]int {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(name))
	var out [][]int
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if wordBefore(text, loc[0]) || wordAfter(text, loc[1]) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

func wordAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

func overlaps(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}

func render(text string, spans []span) string {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var b strings.Builder
	b.Grow(len(text) + len(spans)*64)
	pos := 0
	for _, s := range spans {
		b.WriteString(html.EscapeString(text[pos:s.start]))
		if s.known {
			b.WriteString(`<span class="mention mention-known" data-person-id="`)
			b.WriteString(strconv.FormatInt(s.personID, 10))
			b.WriteString(`">`)
		} else {
			b.WriteString(`<span class="mention mention-new">`)
		}
		b.WriteString(html.EscapeString(text[s.start:s.end]))
		b.WriteString(`</span>`)
		pos = s.end
	}
	b.WriteString(html.EscapeString(text[pos:]))
	return b.String()
}
