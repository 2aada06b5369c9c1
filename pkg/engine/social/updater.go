// Package social maintains the weighted relationship graph between people
// who appear together in journal entries.
package social

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johncui/rapport/pkg/model"
)

// DefaultRelationshipType labels edges created from co-occurrence.
const DefaultRelationshipType = "unknown"

// Result counts the edges touched by one call to UpdateEdges.
type Result struct {
	Created int
	Updated int
}

// Updater folds entry sentiment into the edges between co-referenced people.
type Updater struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewUpdater returns an Updater. A nil logger disables logging.
func NewUpdater(logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{logger: logger, now: time.Now}
}

// UpdateEdges creates or updates the edge for every unordered pair in people.
// It does nothing for fewer than two distinct people or an empty interaction
// type. The caller must run it inside a model.UnitOfWork so that a failure
// rolls every pair back.
func (u *Updater) UpdateEdges(ctx context.Context, rels model.RelationshipStore, owner model.OwnerID, people []model.Person, interactionType string, score float64) (Result, error) {
	var res Result
	if strings.TrimSpace(interactionType) == "" {
		return res, nil
	}
	people = distinct(people)
	if len(people) < 2 {
		return res, nil
	}

	now := u.now().UTC()
	for i := 0; i < len(people); i++ {
		for j := i + 1; j < len(people); j++ {
			created, err := u.updatePair(ctx, rels, owner, people[i].ID, people[j].ID, score, now)
			if err != nil {
				return Result{}, err
			}
			if created {
				res.Created++
			} else {
				res.Updated++
			}
		}
	}
	u.logger.Debug("relationship edges updated",
		zap.String("owner", string(owner)),
		zap.Int("people", len(people)),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Float64("sentiment", score))
	return res, nil
}

func (u *Updater) updatePair(ctx context.Context, rels model.RelationshipStore, owner model.OwnerID, a, b int64, score float64, now time.Time) (bool, error) {
	existing, err := rels.Find(ctx, owner, a, b)
	switch {
	case err == nil:
		existing.Fold(score, now)
		if err := rels.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("update edge %d-%d: %w", a, b, err)
		}
		return false, nil
	case errors.Is(err, model.ErrNotFound):
		key := model.NewPairKey(a, b)
		c := &model.Connection{
			Owner:            owner,
			SourceID:         key.Low,
			TargetID:         key.High,
			RelationshipType: DefaultRelationshipType,
			Closeness:        1,
			Sentiment:        score,
			LastUpdated:      now,
			InteractionCount: 1,
			MentionCount:     1,
		}
		if err := rels.Create(ctx, c); err != nil {
			return false, fmt.Errorf("create edge %d-%d: %w", a, b, err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("find edge %d-%d: %w", a, b, err)
	}
}

// distinct drops repeated ids while keeping the first occurrence order.
func distinct(people []model.Person) []model.Person {
	seen := make(map[int64]struct{}, len(people))
	out := make([]model.Person, 0, len(people))
	for _, p := range people {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
