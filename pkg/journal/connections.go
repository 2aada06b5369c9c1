package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/johncui/rapport/pkg/engine/social"
	"github.com/johncui/rapport/pkg/model"
)

// SaveConnection labels the connection between two people, creating it with
// empty statistics when the pair has none yet. Counters and sentiment of an
// existing connection are left untouched.
func (e *Engine) SaveConnection(ctx context.Context, owner model.OwnerID, in ConnectionInput) (*ConnectionView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if err := e.check(in); err != nil {
		return nil, err
	}
	if in.SourceID == in.TargetID {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, model.ErrSelfConnection)
	}
	if in.RelationshipType == "" {
		in.RelationshipType = social.DefaultRelationshipType
	}
	if in.Closeness == 0 {
		in.Closeness = 1
	}

	var v ConnectionView
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		for _, id := range []int64{in.SourceID, in.TargetID} {
			if _, err := s.People.Get(ctx, owner, id); err != nil {
				return fmt.Errorf("person %d: %w", id, err)
			}
		}

		c, err := s.Relationships.Find(ctx, owner, in.SourceID, in.TargetID)
		switch {
		case err == nil:
			c.RelationshipType = in.RelationshipType
			c.Closeness = in.Closeness
			c.Notes = in.Notes
			c.LastUpdated = e.now().UTC()
			if err := s.Relationships.Update(ctx, c); err != nil {
				return err
			}
		case errors.Is(err, model.ErrNotFound):
			key := model.NewPairKey(in.SourceID, in.TargetID)
			c = &model.Connection{
				Owner:            owner,
				SourceID:         key.Low,
				TargetID:         key.High,
				RelationshipType: in.RelationshipType,
				Closeness:        in.Closeness,
				Notes:            in.Notes,
				LastUpdated:      e.now().UTC(),
			}
			if err := s.Relationships.Create(ctx, c); err != nil {
				return err
			}
		default:
			return err
		}
		v = connectionView(*c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (e *Engine) UpdateConnection(ctx context.Context, owner model.OwnerID, id int64, in UpdateConnectionInput) (*ConnectionView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if err := e.check(in); err != nil {
		return nil, err
	}

	var v ConnectionView
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		c, err := s.Relationships.Get(ctx, owner, id)
		if err != nil {
			return fmt.Errorf("connection %d: %w", id, err)
		}
		if in.RelationshipType != nil {
			c.RelationshipType = *in.RelationshipType
		}
		if in.Closeness != nil {
			c.Closeness = *in.Closeness
		}
		if in.Notes != nil {
			c.Notes = *in.Notes
		}
		c.LastUpdated = e.now().UTC()
		if err := s.Relationships.Update(ctx, c); err != nil {
			return err
		}
		v = connectionView(*c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (e *Engine) ListConnections(ctx context.Context, owner model.OwnerID) ([]ConnectionView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	views := []ConnectionView{}
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		conns, err := s.Relationships.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		for _, c := range conns {
			views = append(views, connectionView(c))
		}
		return nil
	})
	return views, err
}

func (e *Engine) DeleteConnection(ctx context.Context, owner model.OwnerID, id int64) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	return e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		if err := s.Relationships.Delete(ctx, owner, id); err != nil {
			return fmt.Errorf("connection %d: %w", id, err)
		}
		return nil
	})
}
