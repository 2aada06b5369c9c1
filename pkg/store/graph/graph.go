package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/johncui/rapport/pkg/model"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store encapsulates CRUD for person connections.
type Store struct {
	q Querier
}

func New(q Querier) *Store {
	return &Store{q: q}
}

const connectionColumns = `id, owner_id, source_id, target_id, relationship_type, closeness,
            sentiment, notes, last_updated, interaction_count, mention_count`

// Find returns the connection between a and b stored in either direction.
// It is the only lookup by pair; callers never probe directions themselves.
func (s *Store) Find(ctx context.Context, owner model.OwnerID, a, b int64) (*model.Connection, error) {
	row := s.q.QueryRowContext(ctx, `
        SELECT `+connectionColumns+`
        FROM person_connections
        WHERE owner_id = ?
          AND ((source_id = ? AND target_id = ?) OR (source_id = ? AND target_id = ?))
        LIMIT 1;
    `, string(owner), a, b, b, a)
	return one(row)
}

func (s *Store) Get(ctx context.Context, owner model.OwnerID, id int64) (*model.Connection, error) {
	row := s.q.QueryRowContext(ctx, `
        SELECT `+connectionColumns+`
        FROM person_connections
        WHERE id = ? AND owner_id = ?;
    `, id, string(owner))
	return one(row)
}

// Create inserts c. The pair index rejects a second edge for the same pair.
func (s *Store) Create(ctx context.Context, c *model.Connection) error {
	res, err := s.q.ExecContext(ctx, `
        INSERT INTO person_connections(owner_id, source_id, target_id, relationship_type, closeness,
            sentiment, notes, last_updated, interaction_count, mention_count)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
    `, string(c.Owner), c.SourceID, c.TargetID, c.RelationshipType, c.Closeness,
		c.Sentiment, c.Notes, c.LastUpdated, c.InteractionCount, c.MentionCount)
	if err != nil {
		return fmt.Errorf("insert connection: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (s *Store) Update(ctx context.Context, c *model.Connection) error {
	res, err := s.q.ExecContext(ctx, `
        UPDATE person_connections
        SET relationship_type = ?, closeness = ?, sentiment = ?, notes = ?, last_updated = ?,
            interaction_count = ?, mention_count = ?
        WHERE id = ? AND owner_id = ?;
    `, c.RelationshipType, c.Closeness, c.Sentiment, c.Notes, c.LastUpdated,
		c.InteractionCount, c.MentionCount, c.ID, string(c.Owner))
	if err != nil {
		return err
	}
	return affected(res)
}

func (s *Store) Delete(ctx context.Context, owner model.OwnerID, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM person_connections WHERE id = ? AND owner_id = ?;`, id, string(owner))
	if err != nil {
		return err
	}
	return affected(res)
}

// DeleteTouching removes every connection with personID on either end.
func (s *Store) DeleteTouching(ctx context.Context, owner model.OwnerID, personID int64) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
        DELETE FROM person_connections
        WHERE owner_id = ? AND (source_id = ? OR target_id = ?);
    `, string(owner), personID, personID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) ListByOwner(ctx context.Context, owner model.OwnerID) ([]model.Connection, error) {
	rows, err := s.q.QueryContext(ctx, `
        SELECT `+connectionColumns+`
        FROM person_connections
        WHERE owner_id = ?
        ORDER BY id;
    `, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Connection
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (model.Connection, error) {
	var c model.Connection
	var owner string
	err := sc.Scan(&c.ID, &owner, &c.SourceID, &c.TargetID, &c.RelationshipType, &c.Closeness,
		&c.Sentiment, &c.Notes, &c.LastUpdated, &c.InteractionCount, &c.MentionCount)
	c.Owner = model.OwnerID(owner)
	return c, err
}

func one(row *sql.Row) (*model.Connection, error) {
	c, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

var _ model.RelationshipStore = (*Store)(nil)
