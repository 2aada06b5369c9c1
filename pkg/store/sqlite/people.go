package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/johncui/rapport/pkg/model"
)

type peopleStore struct {
	q querier
}

func (s *peopleStore) Create(ctx context.Context, p *model.Person) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := s.q.ExecContext(ctx, `
        INSERT INTO people(owner_id, name, relationship_type, description, date_added)
        VALUES(?, ?, ?, ?, ?);
    `, string(p.Owner), p.Name, p.RelationshipType, p.Description, p.CreatedAt)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (s *peopleStore) Get(ctx context.Context, owner model.OwnerID, id int64) (*model.Person, error) {
	row := s.q.QueryRowContext(ctx, `
        SELECT id, owner_id, name, relationship_type, description, date_added
        FROM people
        WHERE id = ? AND owner_id = ?;
    `, id, string(owner))
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *peopleStore) ListByOwner(ctx context.Context, owner model.OwnerID) ([]model.Person, error) {
	rows, err := s.q.QueryContext(ctx, `
        SELECT id, owner_id, name, relationship_type, description, date_added
        FROM people
        WHERE owner_id = ?
        ORDER BY id;
    `, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *peopleStore) Update(ctx context.Context, p *model.Person) error {
	res, err := s.q.ExecContext(ctx, `
        UPDATE people SET name = ?, relationship_type = ?, description = ?
        WHERE id = ? AND owner_id = ?;
    `, p.Name, p.RelationshipType, p.Description, p.ID, string(p.Owner))
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// Delete removes the person. Entry associations and connections go with it
// through ON DELETE CASCADE.
func (s *peopleStore) Delete(ctx context.Context, owner model.OwnerID, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM people WHERE id = ? AND owner_id = ?;`, id, string(owner))
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(sc scanner) (model.Person, error) {
	var p model.Person
	var owner string
	if err := sc.Scan(&p.ID, &owner, &p.Name, &p.RelationshipType, &p.Description, &p.CreatedAt); err != nil {
		return model.Person{}, err
	}
	p.Owner = model.OwnerID(owner)
	return p, nil
}
