package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/johncui/rapport/pkg/model"
)

type entryStore struct {
	q      querier
	logger *zap.Logger
}

const entryColumns = `id, owner_id, title, content, content_with_highlights, date_created,
            mood, sentiment_score, interaction_type, extracted_names`

func (s *entryStore) Create(ctx context.Context, e *model.JournalEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := s.q.ExecContext(ctx, `
        INSERT INTO journal_entries(owner_id, title, content, content_with_highlights, date_created,
            mood, sentiment_score, interaction_type, extracted_names)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
    `, string(e.Owner), e.Title, e.Content, e.ContentWithHighlights, e.CreatedAt,
		e.Mood, e.SentimentScore, e.InteractionType, encodeNames(e.ExtractedNames))
	if err != nil {
		return err
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	return s.replacePeople(ctx, e.ID, e.PersonIDs)
}

func (s *entryStore) Get(ctx context.Context, owner model.OwnerID, id int64) (*model.JournalEntry, error) {
	entries, err := s.query(ctx, `SELECT `+entryColumns+`
        FROM journal_entries
        WHERE id = ? AND owner_id = ?;`, id, string(owner))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, model.ErrNotFound
	}
	return &entries[0], nil
}

// ListByOwner returns the owner's entries newest first.
func (s *entryStore) ListByOwner(ctx context.Context, owner model.OwnerID) ([]model.JournalEntry, error) {
	return s.query(ctx, `SELECT `+entryColumns+`
        FROM journal_entries
        WHERE owner_id = ?
        ORDER BY date_created DESC, id DESC;`, string(owner))
}

func (s *entryStore) ListByPerson(ctx context.Context, owner model.OwnerID, personID int64) ([]model.JournalEntry, error) {
	return s.query(ctx, `SELECT `+entryColumns+`
        FROM journal_entries
        WHERE owner_id = ? AND id IN (SELECT entry_id FROM journal_people WHERE person_id = ?)
        ORDER BY date_created DESC, id DESC;`, string(owner), personID)
}

func (s *entryStore) Update(ctx context.Context, e *model.JournalEntry) error {
	res, err := s.q.ExecContext(ctx, `
        UPDATE journal_entries
        SET title = ?, content = ?, content_with_highlights = ?, mood = ?,
            sentiment_score = ?, interaction_type = ?, extracted_names = ?
        WHERE id = ? AND owner_id = ?;
    `, e.Title, e.Content, e.ContentWithHighlights, e.Mood,
		e.SentimentScore, e.InteractionType, encodeNames(e.ExtractedNames), e.ID, string(e.Owner))
	if err != nil {
		return err
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}
	return s.replacePeople(ctx, e.ID, e.PersonIDs)
}

func (s *entryStore) Delete(ctx context.Context, owner model.OwnerID, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ? AND owner_id = ?;`, id, string(owner))
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (s *entryStore) replacePeople(ctx context.Context, entryID int64, personIDs []int64) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM journal_people WHERE entry_id = ?;`, entryID); err != nil {
		return err
	}
	for i, pid := range personIDs {
		if _, err := s.q.ExecContext(ctx, `
            INSERT OR IGNORE INTO journal_people(entry_id, person_id, position) VALUES(?, ?, ?);
        `, entryID, pid, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *entryStore) query(ctx context.Context, query string, args ...any) ([]model.JournalEntry, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var out []model.JournalEntry
	for rows.Next() {
		var e model.JournalEntry
		var owner, names string
		if err := rows.Scan(&e.ID, &owner, &e.Title, &e.Content, &e.ContentWithHighlights, &e.CreatedAt,
			&e.Mood, &e.SentimentScore, &e.InteractionType, &names); err != nil {
			rows.Close()
			return nil, err
		}
		e.Owner = model.OwnerID(owner)
		e.ExtractedNames = s.decodeNames(e.ID, names)
		out = append(out, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachPeople(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *entryStore) attachPeople(ctx context.Context, entries []model.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	args := make([]any, len(entries))
	index := make(map[int64]int, len(entries))
	for i, e := range entries {
		args[i] = e.ID
		index[e.ID] = i
	}

	rows, err := s.q.QueryContext(ctx, `
        SELECT entry_id, person_id FROM journal_people
        WHERE entry_id IN (`+placeholders(len(args))+`)
        ORDER BY entry_id, position;`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var entryID, personID int64
		if err := rows.Scan(&entryID, &personID); err != nil {
			return err
		}
		i := index[entryID]
		entries[i].PersonIDs = append(entries[i].PersonIDs, personID)
	}
	return rows.Err()
}

func encodeNames(names []string) string {
	if names == nil {
		names = []string{}
	}
	b, _ := json.Marshal(names)
	return string(b)
}

// decodeNames treats an unreadable stored list as empty.
func (s *entryStore) decodeNames(entryID int64, raw string) []string {
	names := []string{}
	if raw == "" {
		return names
	}
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		s.logger.Warn("discarding malformed extracted names",
			zap.Int64("entry_id", entryID), zap.Error(err))
		return []string{}
	}
	if names == nil {
		names = []string{}
	}
	return names
}
