// Package sentiment scores free text on a [-1, 1] scale using a weighted
// keyword lexicon and a set of phrase patterns.
package sentiment

import (
	"regexp"
)

type tier struct {
	weight float64
	words  []string
}

type phrase struct {
	pattern string
	weight  float64
}

var tiers = []tier{
	{1.0, []string{
		"love", "amazing", "excellent", "fantastic", "outstanding", "perfect",
		"wonderful", "brilliant", "delightful", "exceptional", "thrilled",
	}},
	{0.7, []string{
		"good", "great", "happy", "pleased", "enjoy", "nice", "joy", "excited",
		"grateful", "thankful", "awesome", "best", "positive", "comfortable",
		"fun", "caring", "helpful", "thoughtful", "considerate", "impressed",
	}},
	{0.4, []string{
		"fine", "okay", "decent", "pleasant", "satisfactory", "content",
		"calm", "relaxed", "refreshing", "interesting", "promising", "sweet",
	}},
	{-1.0, []string{
		"hate", "terrible", "horrible", "awful", "dreadful", "miserable",
		"devastating", "disgusting", "furious", "despise", "disaster",
	}},
	{-0.7, []string{
		"bad", "sad", "upset", "angry", "annoyed", "disappointed", "frustrated",
		"unhappy", "sorry", "regret", "difficult", "unfortunate", "unpleasant",
		"troubled", "worried", "painful", "negative", "problem", "concerned",
	}},
	{-0.4, []string{
		"not great", "not good", "mediocre", "uneasy", "uncomfortable",
		"tired", "boring", "dull", "bland", "awkward", "challenging",
	}},
}

var positivePhrases = []phrase{
	{`was so (sweet|nice|kind|helpful|thoughtful)`, 0.8},
	{`made me (smile|laugh|happy)`, 0.8},
	{`really (enjoyed|appreciated|liked|loved)`, 0.9},
	{`very (supportive|understanding|patient)`, 0.8},
	{`had a great time`, 0.7},
	{`was a pleasure`, 0.7},
	{`went well`, 0.6},
	{`felt comfortable`, 0.6},
	{`was helpful`, 0.5},
	{`helped me`, 0.6},
	{`good conversation`, 0.5},
	{`looking forward to`, 0.5},
	{`impressed`, 0.6},
	{`proud of`, 0.7},
	{`grateful for`, 0.7},
	{`thankful for`, 0.7},
}

var negativePhrases = []phrase{
	{`had a (bad|terrible|awful|uncomfortable) experience`, -0.8},
	{`made me (uncomfortable|upset|angry|sad)`, -0.8},
	{`did not (like|enjoy|appreciate)`, -0.6},
	{`was not (helpful|pleasant|kind|nice)`, -0.6},
	{`was (rude|impolite|inconsiderate|mean)`, -0.8},
	{`felt (awkward|uncomfortable|uneasy)`, -0.5},
	{`didn't go well`, -0.6},
	{`wasn't (good|great|pleasant)`, -0.5},
	{`struggled with`, -0.4},
	{`don't like`, -0.6},
	{`not comfortable`, -0.5},
	{`disappointed`, -0.5},
	{`frustrating`, -0.6},
	{`not happy`, -0.6},
	{`concerned about`, -0.4},
	{`worried about`, -0.4},
}

type rule struct {
	re     *regexp.Regexp
	weight float64
}

// Scorer holds the compiled lexicon. The zero value is not usable; use New
// or the package level Score.
type Scorer struct {
	rules []rule
}

// New compiles the built-in lexicon.
func New() *Scorer {
	s := &Scorer{}
	for _, t := range tiers {
		for _, w := range t.words {
			s.rules = append(s.rules, compile(regexp.QuoteMeta(w), t.weight))
		}
	}
	for _, p := range positivePhrases {
		s.rules = append(s.rules, compile(p.pattern, p.weight))
	}
	for _, p := range negativePhrases {
		s.rules = append(s.rules, compile(p.pattern, p.weight))
	}
	return s
}

func compile(pattern string, weight float64) rule {
	return rule{re: regexp.MustCompile(`(?i)\b(?:` + pattern + `)\b`), weight: weight}
}

// Score returns the mean weight of every lexicon hit in text, clamped to
// [-1, 1]. Text without any hit scores exactly 0.
func (s *Scorer) Score(text string) float64 {
	if text == "" {
		return 0
	}
	var sum float64
	var hits int
	for _, r := range s.rules {
		n := len(r.re.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		sum += float64(n) * r.weight
		hits += n
	}
	if hits == 0 {
		return 0
	}
	return clamp(sum / float64(hits))
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

var defaultScorer = New()

// Score scores text with the built-in lexicon.
func Score(text string) float64 {
	return defaultScorer.Score(text)
}
