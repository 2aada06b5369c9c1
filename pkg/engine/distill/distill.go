package distill

import (
	"github.com/johncui/rapport/pkg/engine/highlight"
	"github.com/johncui/rapport/pkg/engine/names"
	"github.com/johncui/rapport/pkg/engine/sentiment"
	"github.com/johncui/rapport/pkg/model"
)

// Analysis holds everything derived from an entry body.
type Analysis struct {
	Sentiment   float64
	Names       []string
	Highlighted string
	KnownByName map[string]int64
}

// Distiller turns raw entry text into derived fields.
type Distiller interface {
	Distill(text string, known []model.Person) Analysis
}

// HeuristicDistiller chains the rule-based scorer, name extractor and
// highlighter. It never fails.
type HeuristicDistiller struct {
	scorer *sentiment.Scorer
}

func NewHeuristic() *HeuristicDistiller {
	return &HeuristicDistiller{scorer: sentiment.New()}
}

// Distill scores text, extracts candidate names and highlights mentions of
// the known people and the candidates.
func (h *HeuristicDistiller) Distill(text string, known []model.Person) Analysis {
	candidates := names.Extract(text)

	kp := make([]highlight.KnownPerson, 0, len(known))
	for _, p := range known {
		kp = append(kp, highlight.KnownPerson{ID: p.ID, Name: p.Name})
	}
	hl := highlight.Highlight(text, kp, candidates)

	return Analysis{
		Sentiment:   h.scorer.Score(text),
		Names:       candidates,
		Highlighted: hl.Text,
		KnownByName: hl.KnownByName,
	}
}

var _ Distiller = (*HeuristicDistiller)(nil)
