package journal

import (
	"github.com/johncui/rapport/pkg/model"
)

type PersonRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type EntryView struct {
	ID                    int64            `json:"id"`
	Title                 string           `json:"title"`
	Content               string           `json:"content"`
	ContentWithHighlights string           `json:"content_with_highlights"`
	DateCreated           string           `json:"date_created"`
	Mood                  string           `json:"mood"`
	SentimentScore        float64          `json:"sentiment_score"`
	InteractionType       string           `json:"interaction_type"`
	People                []PersonRef      `json:"people"`
	ExtractedNames        []string         `json:"extracted_names"`
	KnownMentions         map[string]int64 `json:"known_mentions,omitempty"`
}

type PersonView struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	RelationshipType string `json:"relationship_type"`
	Description      string `json:"description"`
	DateAdded        string `json:"date_added"`
}

type ConnectionView struct {
	ID               int64   `json:"id"`
	Source           int64   `json:"source"`
	Target           int64   `json:"target"`
	RelationshipType string  `json:"relationship_type"`
	Sentiment        float64 `json:"sentiment"`
	InteractionCount int     `json:"interaction_count"`
	MentionCount     int     `json:"mention_count"`
	Closeness        int     `json:"closeness"`
	Notes            string  `json:"notes"`
	LastUpdated      string  `json:"last_updated"`
}

type GraphNode struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	RelationshipType string  `json:"relationship_type"`
	EntryCount       int     `json:"entry_count"`
	AvgSentiment     float64 `json:"avg_sentiment"`
}

type SocialGraph struct {
	Nodes []GraphNode      `json:"nodes"`
	Links []ConnectionView `json:"links"`
}

type StrengthView struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	EntryCount   int     `json:"entry_count"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type TimelinePoint struct {
	ID        int64   `json:"id"`
	Date      string  `json:"date"`
	Sentiment float64 `json:"sentiment"`
	Mood      string  `json:"mood"`
	Title     string  `json:"title"`
}

func entryView(e model.JournalEntry, people map[int64]model.Person) EntryView {
	refs := make([]PersonRef, 0, len(e.PersonIDs))
	for _, id := range e.PersonIDs {
		if p, ok := people[id]; ok {
			refs = append(refs, PersonRef{ID: p.ID, Name: p.Name})
		}
	}
	names := e.ExtractedNames
	if names == nil {
		names = []string{}
	}
	return EntryView{
		ID:                    e.ID,
		Title:                 e.Title,
		Content:               e.Content,
		ContentWithHighlights: e.ContentWithHighlights,
		DateCreated:           e.CreatedAt.Format(model.TimeLayout),
		Mood:                  e.Mood,
		SentimentScore:        e.SentimentScore,
		InteractionType:       e.InteractionType,
		People:                refs,
		ExtractedNames:        names,
	}
}

func personView(p model.Person) PersonView {
	return PersonView{
		ID:               p.ID,
		Name:             p.Name,
		RelationshipType: p.RelationshipType,
		Description:      p.Description,
		DateAdded:        p.CreatedAt.Format(model.TimeLayout),
	}
}

func connectionView(c model.Connection) ConnectionView {
	return ConnectionView{
		ID:               c.ID,
		Source:           c.SourceID,
		Target:           c.TargetID,
		RelationshipType: c.RelationshipType,
		Sentiment:        c.Sentiment,
		InteractionCount: c.InteractionCount,
		MentionCount:     c.MentionCount,
		Closeness:        c.Closeness,
		Notes:            c.Notes,
		LastUpdated:      c.LastUpdated.Format(model.TimeLayout),
	}
}

func indexPeople(people []model.Person) map[int64]model.Person {
	m := make(map[int64]model.Person, len(people))
	for _, p := range people {
		m[p.ID] = p
	}
	return m
}
