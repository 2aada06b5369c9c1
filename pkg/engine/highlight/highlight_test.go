package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	knownOpen = `<span class="mention mention-known" data-person-id="`
	newOpen   = `<span class="mention mention-new">`
)

func TestHighlightKnownAndNew(t *testing.T) {
	res := Highlight(
		"Sam was so sweet and helpful during lunch with Maya.",
		[]KnownPerson{{ID: 7, Name: "Maya"}},
		[]string{"Maya", "Sam"},
	)

	assert.Equal(t,
		newOpen+`Sam</span> was so sweet and helpful during lunch with `+knownOpen+`7">Maya</span>.`,
		res.Text)
	assert.Equal(t, map[string]int64{"Maya": 7}, res.KnownByName)
}

func TestHighlightCaseInsensitiveWholeWord(t *testing.T) {
	res := Highlight("maya and MAYA met Mayan friends", []KnownPerson{{ID: 1, Name: "Maya"}}, nil)

	assert.Equal(t, 2, strings.Count(res.Text, knownOpen))
	assert.Contains(t, res.Text, `>maya</span>`)
	assert.Contains(t, res.Text, `>MAYA</span>`)
	assert.Contains(t, res.Text, " Mayan friends")
}

func TestHighlightKnownWinsOverCandidate(t *testing.T) {
	res := Highlight("Dinner with Leo", []KnownPerson{{ID: 3, Name: "leo"}}, []string{"Leo"})

	assert.Equal(t, `Dinner with `+knownOpen+`3">Leo</span>`, res.Text)
	assert.NotContains(t, res.Text, newOpen)
}

func TestHighlightNeverDoubleWraps(t *testing.T) {
	known := []KnownPerson{
		{ID: 1, Name: "Anna Lee"},
		{ID: 2, Name: "Anna"},
		{ID: 3, Name: "Lee"},
	}
	res := Highlight("Anna Lee and Anna met Lee", known, []string{"Anna", "Lee"})

	assert.Equal(t,
		knownOpen+`1">Anna Lee</span> and `+knownOpen+`2">Anna</span> met `+knownOpen+`3">Lee</span>`,
		res.Text)
	assert.Equal(t, 3, strings.Count(res.Text, "</span>"))
}

func TestHighlightDuplicateNamesFirstPersonWins(t *testing.T) {
	res := Highlight("Saw Chris today", []KnownPerson{{ID: 4, Name: "Chris"}, {ID: 9, Name: "Chris"}}, nil)

	assert.Contains(t, res.Text, knownOpen+`4">Chris</span>`)
	assert.Equal(t, int64(4), res.KnownByName["Chris"])
}

func TestHighlightEscapesSurroundingText(t *testing.T) {
	res := Highlight(`<b>Tom</b> & Jo`, nil, []string{"Tom", "Jo"})

	assert.Equal(t, `&lt;b&gt;`+newOpen+`Tom</span>&lt;/b&gt; &amp; `+newOpen+`Jo</span>`, res.Text)
}

func TestHighlightUnknownNameNotInText(t *testing.T) {
	res := Highlight("Quiet evening", []KnownPerson{{ID: 1, Name: "Maya"}}, []string{"Sam"})

	assert.Equal(t, "Quiet evening", res.Text)
	assert.Empty(t, res.KnownByName)
}

func TestHighlightSkipsBlankNames(t *testing.T) {
	res := Highlight("hello there", []KnownPerson{{ID: 1, Name: "  "}}, []string{""})

	assert.Equal(t, "hello there", res.Text)
}
