package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johncui/rapport/pkg/model"
)

func (e *Engine) CreatePerson(ctx context.Context, owner model.OwnerID, in PersonInput) (*PersonView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	in.normalize()
	if err := e.check(in); err != nil {
		return nil, err
	}

	p := &model.Person{
		Owner:            owner,
		Name:             in.Name,
		RelationshipType: in.RelationshipType,
		Description:      in.Description,
		CreatedAt:        e.now().UTC(),
	}
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		return s.People.Create(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	v := personView(*p)
	return &v, nil
}

func (e *Engine) GetPerson(ctx context.Context, owner model.OwnerID, id int64) (*PersonView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	var v PersonView
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		p, err := s.People.Get(ctx, owner, id)
		if err != nil {
			return fmt.Errorf("person %d: %w", id, err)
		}
		v = personView(*p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (e *Engine) ListPeople(ctx context.Context, owner model.OwnerID) ([]PersonView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	views := []PersonView{}
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		people, err := s.People.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		for _, p := range people {
			views = append(views, personView(p))
		}
		return nil
	})
	return views, err
}

func (e *Engine) UpdatePerson(ctx context.Context, owner model.OwnerID, id int64, in UpdatePersonInput) (*PersonView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	in.normalize()
	if err := e.check(in); err != nil {
		return nil, err
	}

	var v PersonView
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		p, err := s.People.Get(ctx, owner, id)
		if err != nil {
			return fmt.Errorf("person %d: %w", id, err)
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.RelationshipType != nil {
			p.RelationshipType = *in.RelationshipType
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if err := s.People.Update(ctx, p); err != nil {
			return fmt.Errorf("update person %d: %w", id, err)
		}
		v = personView(*p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeletePerson removes the person and every connection touching them.
func (e *Engine) DeletePerson(ctx context.Context, owner model.OwnerID, id int64) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	var removed int64
	err := e.uow.Within(ctx, func(ctx context.Context, s model.Stores) error {
		if _, err := s.People.Get(ctx, owner, id); err != nil {
			return fmt.Errorf("person %d: %w", id, err)
		}
		n, err := s.Relationships.DeleteTouching(ctx, owner, id)
		if err != nil {
			return fmt.Errorf("delete connections of person %d: %w", id, err)
		}
		removed = n
		return s.People.Delete(ctx, owner, id)
	})
	if err != nil {
		return err
	}
	e.logger.Debug("person deleted", zap.Int64("person_id", id), zap.Int64("connections_removed", removed))
	return nil
}
