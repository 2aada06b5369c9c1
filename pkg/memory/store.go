// Package memory is an in-process implementation of the journal stores.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/johncui/rapport/pkg/model"
)

// Store keeps every record in maps guarded by one mutex. Within holds the
// mutex for the whole unit of work and restores a snapshot if it fails.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type state struct {
	nextID  int64
	people  map[int64]model.Person
	entries map[int64]model.JournalEntry
	conns   map[int64]model.Connection
}

func NewStore() *Store {
	return &Store{
		state: &state{
			people:  make(map[int64]model.Person),
			entries: make(map[int64]model.JournalEntry),
			conns:   make(map[int64]model.Connection),
		},
		now: time.Now,
	}
}

// Within runs fn with exclusive access to the store.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, st model.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.state.clone()
	err := fn(ctx, model.Stores{
		People:        peopleStore{s},
		Entries:       entryStore{s},
		Relationships: relationshipStore{s},
	})
	if err != nil {
		s.state = snapshot
	}
	return err
}

func (st *state) id() int64 {
	st.nextID++
	return st.nextID
}

func (st *state) clone() *state {
	c := &state{
		nextID:  st.nextID,
		people:  make(map[int64]model.Person, len(st.people)),
		entries: make(map[int64]model.JournalEntry, len(st.entries)),
		conns:   make(map[int64]model.Connection, len(st.conns)),
	}
	for k, v := range st.people {
		c.people[k] = v
	}
	for k, v := range st.entries {
		c.entries[k] = copyEntry(v)
	}
	for k, v := range st.conns {
		c.conns[k] = v
	}
	return c
}

func copyEntry(e model.JournalEntry) model.JournalEntry {
	e.PersonIDs = append([]int64(nil), e.PersonIDs...)
	e.ExtractedNames = append([]string(nil), e.ExtractedNames...)
	return e
}

type peopleStore struct{ s *Store }

func (p peopleStore) Create(_ context.Context, person *model.Person) error {
	person.ID = p.s.state.id()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = p.s.now().UTC()
	}
	p.s.state.people[person.ID] = *person
	return nil
}

func (p peopleStore) Get(_ context.Context, owner model.OwnerID, id int64) (*model.Person, error) {
	person, ok := p.s.state.people[id]
	if !ok || person.Owner != owner {
		return nil, model.ErrNotFound
	}
	return &person, nil
}

func (p peopleStore) ListByOwner(_ context.Context, owner model.OwnerID) ([]model.Person, error) {
	var out []model.Person
	for _, person := range p.s.state.people {
		if person.Owner == owner {
			out = append(out, person)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p peopleStore) Update(_ context.Context, person *model.Person) error {
	cur, ok := p.s.state.people[person.ID]
	if !ok || cur.Owner != person.Owner {
		return model.ErrNotFound
	}
	p.s.state.people[person.ID] = *person
	return nil
}

// Delete removes the person, its entry associations and every edge touching it.
func (p peopleStore) Delete(_ context.Context, owner model.OwnerID, id int64) error {
	cur, ok := p.s.state.people[id]
	if !ok || cur.Owner != owner {
		return model.ErrNotFound
	}
	delete(p.s.state.people, id)
	for eid, e := range p.s.state.entries {
		e.PersonIDs = without(e.PersonIDs, id)
		p.s.state.entries[eid] = e
	}
	for cid, c := range p.s.state.conns {
		if c.SourceID == id || c.TargetID == id {
			delete(p.s.state.conns, cid)
		}
	}
	return nil
}

func without(ids []int64, id int64) []int64 {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type entryStore struct{ s *Store }

func (e entryStore) Create(_ context.Context, entry *model.JournalEntry) error {
	entry.ID = e.s.state.id()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = e.s.now().UTC()
	}
	e.s.state.entries[entry.ID] = copyEntry(*entry)
	return nil
}

func (e entryStore) Get(_ context.Context, owner model.OwnerID, id int64) (*model.JournalEntry, error) {
	entry, ok := e.s.state.entries[id]
	if !ok || entry.Owner != owner {
		return nil, model.ErrNotFound
	}
	entry = copyEntry(entry)
	return &entry, nil
}

func (e entryStore) ListByOwner(_ context.Context, owner model.OwnerID) ([]model.JournalEntry, error) {
	return e.list(func(entry model.JournalEntry) bool { return entry.Owner == owner }), nil
}

func (e entryStore) ListByPerson(_ context.Context, owner model.OwnerID, personID int64) ([]model.JournalEntry, error) {
	return e.list(func(entry model.JournalEntry) bool {
		if entry.Owner != owner {
			return false
		}
		for _, id := range entry.PersonIDs {
			if id == personID {
				return true
			}
		}
		return false
	}), nil
}

// list returns matching entries newest first.
func (e entryStore) list(keep func(model.JournalEntry) bool) []model.JournalEntry {
	var out []model.JournalEntry
	for _, entry := range e.s.state.entries {
		if keep(entry) {
			out = append(out, copyEntry(entry))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (e entryStore) Update(_ context.Context, entry *model.JournalEntry) error {
	cur, ok := e.s.state.entries[entry.ID]
	if !ok || cur.Owner != entry.Owner {
		return model.ErrNotFound
	}
	e.s.state.entries[entry.ID] = copyEntry(*entry)
	return nil
}

func (e entryStore) Delete(_ context.Context, owner model.OwnerID, id int64) error {
	cur, ok := e.s.state.entries[id]
	if !ok || cur.Owner != owner {
		return model.ErrNotFound
	}
	delete(e.s.state.entries, id)
	return nil
}

type relationshipStore struct{ s *Store }

func (r relationshipStore) Find(_ context.Context, owner model.OwnerID, a, b int64) (*model.Connection, error) {
	key := model.NewPairKey(a, b)
	for _, c := range r.s.state.conns {
		if c.Owner == owner && c.Key() == key {
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r relationshipStore) Get(_ context.Context, owner model.OwnerID, id int64) (*model.Connection, error) {
	c, ok := r.s.state.conns[id]
	if !ok || c.Owner != owner {
		return nil, model.ErrNotFound
	}
	return &c, nil
}

func (r relationshipStore) Create(ctx context.Context, c *model.Connection) error {
	if _, err := r.Find(ctx, c.Owner, c.SourceID, c.TargetID); err == nil {
		return errDuplicatePair
	}
	c.ID = r.s.state.id()
	r.s.state.conns[c.ID] = *c
	return nil
}

func (r relationshipStore) Update(_ context.Context, c *model.Connection) error {
	cur, ok := r.s.state.conns[c.ID]
	if !ok || cur.Owner != c.Owner {
		return model.ErrNotFound
	}
	r.s.state.conns[c.ID] = *c
	return nil
}

func (r relationshipStore) Delete(_ context.Context, owner model.OwnerID, id int64) error {
	cur, ok := r.s.state.conns[id]
	if !ok || cur.Owner != owner {
		return model.ErrNotFound
	}
	delete(r.s.state.conns, id)
	return nil
}

func (r relationshipStore) DeleteTouching(_ context.Context, owner model.OwnerID, personID int64) (int64, error) {
	var n int64
	for id, c := range r.s.state.conns {
		if c.Owner == owner && (c.SourceID == personID || c.TargetID == personID) {
			delete(r.s.state.conns, id)
			n++
		}
	}
	return n, nil
}

func (r relationshipStore) ListByOwner(_ context.Context, owner model.OwnerID) ([]model.Connection, error) {
	var out []model.Connection
	for _, c := range r.s.state.conns {
		if c.Owner == owner {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ model.UnitOfWork = (*Store)(nil)
