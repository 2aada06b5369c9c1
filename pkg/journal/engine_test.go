package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johncui/rapport/pkg/engine/sentiment"
	"github.com/johncui/rapport/pkg/memory"
	"github.com/johncui/rapport/pkg/model"
	"github.com/johncui/rapport/pkg/store/sqlite"
)

const owner = model.OwnerID("0b6f3c2e-1c1d-4c55-9d8e-7b1f7d0e2a11")

func newEngine(t *testing.T, uow model.UnitOfWork) *Engine {
	t.Helper()
	eng := New(uow, Options{})
	clock := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	eng.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return eng
}

func mustPerson(t *testing.T, eng *Engine, name string) int64 {
	t.Helper()
	p, err := eng.CreatePerson(context.Background(), owner, PersonInput{Name: name})
	require.NoError(t, err)
	return p.ID
}

func onlyConnection(t *testing.T, eng *Engine) ConnectionView {
	t.Helper()
	conns, err := eng.ListConnections(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	return conns[0]
}

func TestCreateEntryHighlightsKnownAndNewNames(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()
	maya := mustPerson(t, eng, "Maya")

	text := "Lunch today. Then Sam was so sweet and helpful during lunch with Maya."
	v, err := eng.CreateEntry(ctx, owner, CreateEntryInput{Title: "Lunch", Content: text, InteractionType: "meeting"})
	require.NoError(t, err)

	assert.Greater(t, v.SentimentScore, 0.0)
	assert.ElementsMatch(t, []string{"Sam", "Maya"}, v.ExtractedNames)
	assert.Contains(t, v.ContentWithHighlights, `<span class="mention mention-new">Sam</span>`)
	assert.Contains(t, v.ContentWithHighlights, `data-person-id="`)
	assert.Equal(t, map[string]int64{"Maya": maya}, v.KnownMentions)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, v.DateCreated)

	conns, err := eng.ListConnections(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestCreateEntryCreatesEdge(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()
	sam := mustPerson(t, eng, "Sam")
	maya := mustPerson(t, eng, "Maya")

	text := "Sam was so sweet and helpful during lunch with Maya."
	v, err := eng.CreateEntry(ctx, owner, CreateEntryInput{
		Title:           "Lunch",
		Content:         text,
		InteractionType: "meeting",
		PersonIDs:       []int64{sam, maya},
	})
	require.NoError(t, err)
	assert.InDelta(t, sentiment.Score(text), v.SentimentScore, 1e-9)
	assert.Equal(t, []PersonRef{{ID: sam, Name: "Sam"}, {ID: maya, Name: "Maya"}}, v.People)

	c := onlyConnection(t, eng)
	assert.Equal(t, 1, c.InteractionCount)
	assert.Equal(t, 1, c.MentionCount)
	assert.Equal(t, 1, c.Closeness)
	assert.Equal(t, "unknown", c.RelationshipType)
	assert.InDelta(t, v.SentimentScore, c.Sentiment, 1e-9)
}

func TestCreateEntryValidation(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateEntryInput
	}{
		{"missing title", CreateEntryInput{Content: "text"}},
		{"blank title", CreateEntryInput{Title: "  ", Content: "text"}},
		{"missing content", CreateEntryInput{Title: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.CreateEntry(ctx, owner, tt.in)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}

	entries, err := eng.ListEntries(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateEntryDropsForeignPeople(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()
	a := mustPerson(t, eng, "Ana")
	foreign, err := eng.CreatePerson(ctx, "someone-else", PersonInput{Name: "Bo"})
	require.NoError(t, err)

	v, err := eng.CreateEntry(ctx, owner, CreateEntryInput{
		Title: "t", Content: "call", InteractionType: "call",
		PersonIDs: []int64{a, foreign.ID, 999},
	})
	require.NoError(t, err)
	assert.Equal(t, []PersonRef{{ID: a, Name: "Ana"}}, v.People)

	conns, err := eng.ListConnections(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestUpdateEntryFoldsOnQualifyingChange(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()
	a := mustPerson(t, eng, "Ana")
	b := mustPerson(t, eng, "Ben")
	c := mustPerson(t, eng, "Cy")

	v, err := eng.CreateEntry(ctx, owner, CreateEntryInput{
		Title: "t", Content: "I love this", InteractionType: "meeting", PersonIDs: []int64{a, b},
	})
	require.NoError(t, err)
	require.Equal(t, 1.0, v.SentimentScore)

	// Title and mood only: nothing folds.
	title, mood := "new title", "calm"
	_, err = eng.UpdateEntry(ctx, owner, v.ID, UpdateEntryInput{Title: &title, Mood: &mood})
	require.NoError(t, err)
	assert.Equal(t, 1, onlyConnection(t, eng).MentionCount)

	// Same body again is not a change.
	same := "I love this"
	_, err = eng.UpdateEntry(ctx, owner, v.ID, UpdateEntryInput{Content: &same})
	require.NoError(t, err)
	assert.Equal(t, 1, onlyConnection(t, eng).MentionCount)

	// New body: rescored and folded.
	body := "That was awful"
	v, err = eng.UpdateEntry(ctx, owner, v.ID, UpdateEntryInput{Content: &body})
	require.NoError(t, err)
	assert.Equal(t, -1.0, v.SentimentScore)
	conn := onlyConnection(t, eng)
	assert.Equal(t, 2, conn.MentionCount)
	assert.Equal(t, 2, conn.InteractionCount)
	assert.InDelta(t, 0.0, conn.Sentiment, 1e-9)

	// Reordered people are the same set.
	reordered := []int64{b, a}
	_, err = eng.UpdateEntry(ctx, owner, v.ID, UpdateEntryInput{PersonIDs: &reordered})
	require.NoError(t, err)
	assert.Equal(t, 2, onlyConnection(t, eng).MentionCount)

	// Adding a person folds every pair of the new set.
	three := []int64{a, b, c}
	_, err = eng.UpdateEntry(ctx, owner, v.ID, UpdateEntryInput{PersonIDs: &three})
	require.NoError(t, err)
	conns, err := eng.ListConnections(ctx, owner)
	require.NoError(t, err)
	require.Len(t, conns, 3)
	for _, cv := range conns {
		if cv.Source == a && cv.Target == b {
			assert.Equal(t, 3, cv.MentionCount)
		} else {
			assert.Equal(t, 1, cv.MentionCount)
		}
	}
}

func TestUpdateEntryWithoutInteractionTypeDoesNotFold(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()
	a := mustPerson(t, eng, "Ana")
	b := mustPerson(t, eng, "Ben")

	v, err := eng.CreateEntry(ctx, owner, CreateEntryInput{Title: "t", Content: "fine", PersonIDs: []int64{a}})
	require.NoError(t, err)

	both := []int64{a, b}
	_, err = eng.UpdateEntry(ctx, owner, v.ID, UpdateEntryInput{PersonIDs: &both})
	require.NoError(t, err)

	conns, err := eng.ListConnections(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestUpdateEntryErrors(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()

	_, err := eng.UpdateEntry(ctx, owner, 42, UpdateEntryInput{})
	assert.ErrorIs(t, err, model.ErrNotFound)

	v, err := eng.CreateEntry(ctx, owner, CreateEntryInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	empty := " "
	_, err = eng.UpdateEntry(ctx, owner, v.ID, UpdateEntryInput{Content: &empty})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = eng.UpdateEntry(ctx, "intruder", v.ID, UpdateEntryInput{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteEntryKeepsEdges(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()
	a := mustPerson(t, eng, "Ana")
	b := mustPerson(t, eng, "Ben")

	v, err := eng.CreateEntry(ctx, owner, CreateEntryInput{Title: "t", Content: "good", InteractionType: "text", PersonIDs: []int64{a, b}})
	require.NoError(t, err)
	require.NoError(t, eng.DeleteEntry(ctx, owner, v.ID))

	_, err = eng.GetEntry(ctx, owner, v.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 1, onlyConnection(t, eng).MentionCount)
	assert.ErrorIs(t, eng.DeleteEntry(ctx, owner, v.ID), model.ErrNotFound)
}

func TestDeletePersonRemovesConnections(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()
	a := mustPerson(t, eng, "Ana")
	b := mustPerson(t, eng, "Ben")

	v, err := eng.CreateEntry(ctx, owner, CreateEntryInput{Title: "t", Content: "good", InteractionType: "text", PersonIDs: []int64{a, b}})
	require.NoError(t, err)
	require.NoError(t, eng.DeletePerson(ctx, owner, a))

	conns, err := eng.ListConnections(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, conns)

	got, err := eng.GetEntry(ctx, owner, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []PersonRef{{ID: b, Name: "Ben"}}, got.People)

	assert.ErrorIs(t, eng.DeletePerson(ctx, owner, a), model.ErrNotFound)
}

func TestPeopleCRUD(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()

	_, err := eng.CreatePerson(ctx, owner, PersonInput{Name: ""})
	assert.ErrorIs(t, err, model.ErrValidation)

	p, err := eng.CreatePerson(ctx, owner, PersonInput{Name: " Maya ", RelationshipType: "friend"})
	require.NoError(t, err)
	assert.Equal(t, "Maya", p.Name)

	desc := "met at climbing gym"
	p, err = eng.UpdatePerson(ctx, owner, p.ID, UpdatePersonInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, p.Description)
	assert.Equal(t, "friend", p.RelationshipType)

	blank := ""
	_, err = eng.UpdatePerson(ctx, owner, p.ID, UpdatePersonInput{Name: &blank})
	assert.ErrorIs(t, err, model.ErrValidation)

	list, err := eng.ListPeople(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = eng.GetPerson(ctx, "other", p.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSaveConnection(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	ctx := context.Background()
	a := mustPerson(t, eng, "Ana")
	b := mustPerson(t, eng, "Ben")

	_, err := eng.SaveConnection(ctx, owner, ConnectionInput{SourceID: a})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = eng.SaveConnection(ctx, owner, ConnectionInput{SourceID: a, TargetID: a})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.ErrorIs(t, err, model.ErrSelfConnection)

	_, err = eng.SaveConnection(ctx, owner, ConnectionInput{SourceID: a, TargetID: 999})
	assert.ErrorIs(t, err, model.ErrNotFound)

	c, err := eng.SaveConnection(ctx, owner, ConnectionInput{SourceID: b, TargetID: a, RelationshipType: "siblings", Closeness: 9})
	require.NoError(t, err)
	assert.Equal(t, a, c.Source)
	assert.Equal(t, 0, c.MentionCount)

	_, err = eng.CreateEntry(ctx, owner, CreateEntryInput{Title: "t", Content: "awful", InteractionType: "call", PersonIDs: []int64{a, b}})
	require.NoError(t, err)

	c, err = eng.SaveConnection(ctx, owner, ConnectionInput{SourceID: a, TargetID: b, RelationshipType: "twins", Closeness: 12})
	require.NoError(t, err)
	assert.Equal(t, "twins", c.RelationshipType)
	assert.Equal(t, 12, c.Closeness)
	assert.Equal(t, 1, c.MentionCount)
	assert.Equal(t, 1, c.InteractionCount)
	assert.InDelta(t, -1.0, c.Sentiment, 1e-9)

	notes := "grew up together"
	c, err = eng.UpdateConnection(ctx, owner, c.ID, UpdateConnectionInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, c.Notes)
	assert.Equal(t, "twins", c.RelationshipType)

	require.NoError(t, eng.DeleteConnection(ctx, owner, c.ID))
	assert.ErrorIs(t, eng.DeleteConnection(ctx, owner, c.ID), model.ErrNotFound)
}

func TestInvalidOwner(t *testing.T) {
	eng := newEngine(t, memory.NewStore())
	_, err := eng.ListEntries(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrInvalidOwner)
}

func TestEngineOnSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.New(ctx, sqlite.Config{Path: filepath.Join(t.TempDir(), "journal.db")})
	require.NoError(t, err)
	defer db.Close()
	eng := newEngine(t, db)

	sam := mustPerson(t, eng, "Sam")
	maya := mustPerson(t, eng, "Maya")
	in := CreateEntryInput{
		Title:           "Lunch",
		Content:         "Sam was so sweet and helpful during lunch with Maya.",
		InteractionType: "meeting",
		PersonIDs:       []int64{sam, maya},
	}
	first, err := eng.CreateEntry(ctx, owner, in)
	require.NoError(t, err)

	in.Content = "Sam was rude to Maya."
	second, err := eng.CreateEntry(ctx, owner, in)
	require.NoError(t, err)

	c := onlyConnection(t, eng)
	assert.Equal(t, 2, c.MentionCount)
	assert.InDelta(t, (first.SentimentScore+second.SentimentScore)/2, c.Sentiment, 1e-9)

	got, err := eng.GetEntry(ctx, owner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ContentWithHighlights, got.ContentWithHighlights)
	assert.Equal(t, first.ExtractedNames, got.ExtractedNames)
	assert.Equal(t, first.DateCreated, got.DateCreated)
}
