package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johncui/rapport/pkg/engine/distill"
	"github.com/johncui/rapport/pkg/engine/social"
	"github.com/johncui/rapport/pkg/model"
)

// CreateEntry analyzes and stores a new entry, then updates the edges
// between its associated people.
func (e *Engine) CreateEntry(ctx context.Context, owner model.OwnerID, in CreateEntryInput) (*EntryView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	in.normalize()
	if err := e.check(in); err != nil {
		return nil, err
	}

	var view EntryView
	var edges social.Result
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		known, err := s.People.ListByOwner(ctx, owner)
		if err != nil {
			return fmt.Errorf("list people: %w", err)
		}
		byID := indexPeople(known)
		associated := resolvePeople(byID, in.PersonIDs)
		analysis := e.distiller.Distill(in.Content, known)

		entry := &model.JournalEntry{
			Owner:           owner,
			Title:           in.Title,
			Content:         in.Content,
			Mood:            in.Mood,
			InteractionType: in.InteractionType,
			PersonIDs:       ids(associated),
			CreatedAt:       e.now().UTC(),
		}
		applyAnalysis(entry, analysis)
		if err := s.Entries.Create(ctx, entry); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}

		edges, err = e.updater.UpdateEdges(ctx, s.Relationships, owner, associated, entry.InteractionType, entry.SentimentScore)
		if err != nil {
			return err
		}
		view = entryView(*entry, byID)
		view.KnownMentions = analysis.KnownByName
		return nil
	})
	if err != nil {
		e.logger.Error("create entry failed", zap.String("owner", string(owner)), zap.Error(err))
		return nil, err
	}

	e.metrics.ObserveEntry("create", view.SentimentScore)
	e.metrics.ObserveEdges(edges.Created, edges.Updated)
	e.logger.Debug("entry created",
		zap.Int64("entry_id", view.ID),
		zap.Float64("sentiment", view.SentimentScore),
		zap.Int("names", len(view.ExtractedNames)),
		zap.Int("edges_created", edges.Created),
		zap.Int("edges_updated", edges.Updated))
	return &view, nil
}

// UpdateEntry applies the non-nil fields of in. A changed body is analyzed
// again. When the body or the set of people changed, the entry's sentiment
// is folded into its edges once more; edits are not idempotent against edge
// statistics.
func (e *Engine) UpdateEntry(ctx context.Context, owner model.OwnerID, id int64, in UpdateEntryInput) (*EntryView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	in.normalize()
	if err := e.check(in); err != nil {
		return nil, err
	}

	var view EntryView
	var edges social.Result
	var textChanged, peopleChanged bool
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		entry, err := s.Entries.Get(ctx, owner, id)
		if err != nil {
			return fmt.Errorf("entry %d: %w", id, err)
		}
		known, err := s.People.ListByOwner(ctx, owner)
		if err != nil {
			return fmt.Errorf("list people: %w", err)
		}
		byID := indexPeople(known)

		if in.Title != nil {
			entry.Title = *in.Title
		}
		if in.Mood != nil {
			entry.Mood = *in.Mood
		}
		if in.InteractionType != nil {
			entry.InteractionType = *in.InteractionType
		}

		var analysis distill.Analysis
		if in.Content != nil && *in.Content != entry.Content {
			textChanged = true
			entry.Content = *in.Content
			analysis = e.distiller.Distill(entry.Content, known)
			applyAnalysis(entry, analysis)
		}

		associated := resolvePeople(byID, entry.PersonIDs)
		if in.PersonIDs != nil {
			next := resolvePeople(byID, *in.PersonIDs)
			peopleChanged = !sameIDs(ids(associated), ids(next))
			associated = next
		}
		entry.PersonIDs = ids(associated)

		if err := s.Entries.Update(ctx, entry); err != nil {
			return fmt.Errorf("update entry %d: %w", id, err)
		}
		if textChanged || peopleChanged {
			edges, err = e.updater.UpdateEdges(ctx, s.Relationships, owner, associated, entry.InteractionType, entry.SentimentScore)
			if err != nil {
				return err
			}
		}
		view = entryView(*entry, byID)
		view.KnownMentions = analysis.KnownByName
		return nil
	})
	if err != nil {
		return nil, err
	}

	if textChanged {
		e.metrics.ObserveEntry("update", view.SentimentScore)
	}
	e.metrics.ObserveEdges(edges.Created, edges.Updated)
	e.logger.Debug("entry updated",
		zap.Int64("entry_id", id),
		zap.Bool("text_changed", textChanged),
		zap.Bool("people_changed", peopleChanged),
		zap.Int("edges_created", edges.Created),
		zap.Int("edges_updated", edges.Updated))
	return &view, nil
}

// DeleteEntry removes the entry. Edge statistics it contributed are kept.
func (e *Engine) DeleteEntry(ctx context.Context, owner model.OwnerID, id int64) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	return e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		if err := s.Entries.Delete(ctx, owner, id); err != nil {
			return fmt.Errorf("entry %d: %w", id, err)
		}
		return nil
	})
}

func (e *Engine) GetEntry(ctx context.Context, owner model.OwnerID, id int64) (*EntryView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	var view EntryView
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		entry, err := s.Entries.Get(ctx, owner, id)
		if err != nil {
			return fmt.Errorf("entry %d: %w", id, err)
		}
		people, err := s.People.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		view = entryView(*entry, indexPeople(people))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListEntries returns the owner's entries newest first.
func (e *Engine) ListEntries(ctx context.Context, owner model.OwnerID) ([]EntryView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	views := []EntryView{}
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		entries, err := s.Entries.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		people, err := s.People.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		byID := indexPeople(people)
		for _, entry := range entries {
			views = append(views, entryView(entry, byID))
		}
		return nil
	})
	return views, err
}

func applyAnalysis(entry *model.JournalEntry, a distill.Analysis) {
	entry.SentimentScore = a.Sentiment
	entry.ExtractedNames = a.Names
	entry.ContentWithHighlights = a.Highlighted
}

// resolvePeople keeps the ids that belong to the owner, in request order and
// without repeats.
func resolvePeople(byID map[int64]model.Person, requested []int64) []model.Person {
	seen := make(map[int64]struct{}, len(requested))
	out := make([]model.Person, 0, len(requested))
	for _, id := range requested {
		p, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, p)
	}
	return out
}

func ids(people []model.Person) []int64 {
	out := make([]int64, len(people))
	for i, p := range people {
		out[i] = p.ID
	}
	return out
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
