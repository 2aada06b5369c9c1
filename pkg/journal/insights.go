package journal

import (
	"context"
	"fmt"
	"sort"

	"github.com/johncui/rapport/pkg/model"
)

type personStats struct {
	entries int
	sum     float64
}

func (s personStats) avg() float64 {
	if s.entries == 0 {
		return 0
	}
	return s.sum / float64(s.entries)
}

func statsByPerson(entries []model.JournalEntry) map[int64]personStats {
	out := make(map[int64]personStats)
	for _, e := range entries {
		for _, id := range e.PersonIDs {
			st := out[id]
			st.entries++
			st.sum += e.SentimentScore
			out[id] = st
		}
	}
	return out
}

// SocialGraph returns every person as a node and at most one link per pair.
func (e *Engine) SocialGraph(ctx context.Context, owner model.OwnerID) (*SocialGraph, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	graph := &SocialGraph{Nodes: []GraphNode{}, Links: []ConnectionView{}}
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		people, err := s.People.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		entries, err := s.Entries.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		conns, err := s.Relationships.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}

		stats := statsByPerson(entries)
		byID := indexPeople(people)
		for _, p := range people {
			st := stats[p.ID]
			graph.Nodes = append(graph.Nodes, GraphNode{
				ID:               p.ID,
				Name:             p.Name,
				RelationshipType: p.RelationshipType,
				EntryCount:       st.entries,
				AvgSentiment:     st.avg(),
			})
		}

		seen := make(map[model.PairKey]struct{}, len(conns))
		for _, c := range conns {
			key := c.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			_, okA := byID[c.SourceID]
			_, okB := byID[c.TargetID]
			if !okA || !okB {
				continue
			}
			seen[key] = struct{}{}
			graph.Links = append(graph.Links, connectionView(c))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return graph, nil
}

// RelationshipStrength reports how often each person appears in entries and
// the mean sentiment of those entries.
func (e *Engine) RelationshipStrength(ctx context.Context, owner model.OwnerID) ([]StrengthView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	out := []StrengthView{}
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		people, err := s.People.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		entries, err := s.Entries.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		stats := statsByPerson(entries)
		for _, p := range people {
			st := stats[p.ID]
			out = append(out, StrengthView{ID: p.ID, Name: p.Name, EntryCount: st.entries, AvgSentiment: st.avg()})
		}
		return nil
	})
	return out, err
}

// InteractionFrequency counts entries per month for each person name. People
// sharing a name are merged.
func (e *Engine) InteractionFrequency(ctx context.Context, owner model.OwnerID) (map[string][]MonthCount, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	out := make(map[string][]MonthCount)
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		people, err := s.People.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		entries, err := s.Entries.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}

		counts := make(map[string]map[string]int)
		for _, p := range people {
			if counts[p.Name] == nil {
				counts[p.Name] = make(map[string]int)
			}
		}
		byID := indexPeople(people)
		for _, entry := range entries {
			month := entry.CreatedAt.Format("2006-01")
			for _, id := range entry.PersonIDs {
				if p, ok := byID[id]; ok {
					counts[p.Name][month]++
				}
			}
		}

		for name, months := range counts {
			list := make([]MonthCount, 0, len(months))
			for m, n := range months {
				list = append(list, MonthCount{Month: m, Count: n})
			}
			sort.Slice(list, func(i, j int) bool { return list[i].Month < list[j].Month })
			out[name] = list
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EmotionTimeline lists the entries mentioning one person, oldest first.
func (e *Engine) EmotionTimeline(ctx context.Context, owner model.OwnerID, personID int64) ([]TimelinePoint, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	out := []TimelinePoint{}
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		if _, err := s.People.Get(ctx, owner, personID); err != nil {
			return fmt.Errorf("person %d: %w", personID, err)
		}
		entries, err := s.Entries.ListByPerson(ctx, owner, personID)
		if err != nil {
			return err
		}
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })
		for _, entry := range entries {
			out = append(out, TimelinePoint{
				ID:        entry.ID,
				Date:      entry.CreatedAt.Format("2006-01-02"),
				Sentiment: entry.SentimentScore,
				Mood:      entry.Mood,
				Title:     entry.Title,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
