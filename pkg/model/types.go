package model

import (
	"context"
	"time"
)

// TimeLayout is the wire format for timestamps in produced records.
const TimeLayout = "2006-01-02 15:04:05"

// OwnerID scopes every record to one user account.
type OwnerID string

// Person is someone the owner writes about.
type Person struct {
	ID               int64     `json:"id"`
	Owner            OwnerID   `json:"-"`
	Name             string    `json:"name"`
	RelationshipType string    `json:"relationship_type"`
	Description      string    `json:"description"`
	CreatedAt        time.Time `json:"date_added"`
}

// JournalEntry mirrors journal_entries rows plus its person associations.
type JournalEntry struct {
	ID                    int64
	Owner                 OwnerID
	Title                 string
	Content               string
	ContentWithHighlights string
	CreatedAt             time.Time
	Mood                  string
	SentimentScore        float64
	InteractionType       string
	PersonIDs             []int64
	ExtractedNames        []string
}

// Connection is the undirected edge between two people. SourceID is always
// the lower id of the pair when written by this package.
type Connection struct {
	ID               int64
	Owner            OwnerID
	SourceID         int64
	TargetID         int64
	RelationshipType string
	Closeness        int
	Sentiment        float64
	Notes            string
	LastUpdated      time.Time
	InteractionCount int
	MentionCount     int
}

// Fold adds one sentiment sample to the running average.
func (c *Connection) Fold(sample float64, at time.Time) {
	c.InteractionCount++
	c.Sentiment = (c.Sentiment*float64(c.MentionCount) + sample) / float64(c.MentionCount+1)
	c.MentionCount++
	c.LastUpdated = at
}

// PairKey is the canonical form of an unordered pair of person ids.
type PairKey struct {
	Low  int64
	High int64
}

// NewPairKey orders a and b so that {a,b} and {b,a} produce the same key.
func NewPairKey(a, b int64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

// Key returns the pair key of the connection regardless of its stored direction.
func (c Connection) Key() PairKey {
	return NewPairKey(c.SourceID, c.TargetID)
}

// PeopleStore persists people for one owner.
type PeopleStore interface {
	Create(ctx context.Context, p *Person) error
	Get(ctx context.Context, owner OwnerID, id int64) (*Person, error)
	ListByOwner(ctx context.Context, owner OwnerID) ([]Person, error)
	Update(ctx context.Context, p *Person) error
	Delete(ctx context.Context, owner OwnerID, id int64) error
}

// EntryStore persists journal entries and their person associations.
type EntryStore interface {
	Create(ctx context.Context, e *JournalEntry) error
	Get(ctx context.Context, owner OwnerID, id int64) (*JournalEntry, error)
	ListByOwner(ctx context.Context, owner OwnerID) ([]JournalEntry, error)
	ListByPerson(ctx context.Context, owner OwnerID, personID int64) ([]JournalEntry, error)
	Update(ctx context.Context, e *JournalEntry) error
	Delete(ctx context.Context, owner OwnerID, id int64) error
}

// RelationshipStore persists connections. Find must match either direction.
type RelationshipStore interface {
	Find(ctx context.Context, owner OwnerID, a, b int64) (*Connection, error)
	Get(ctx context.Context, owner OwnerID, id int64) (*Connection, error)
	Create(ctx context.Context, c *Connection) error
	Update(ctx context.Context, c *Connection) error
	Delete(ctx context.Context, owner OwnerID, id int64) error
	DeleteTouching(ctx context.Context, owner OwnerID, personID int64) (int64, error)
	ListByOwner(ctx context.Context, owner OwnerID) ([]Connection, error)
}

// Stores groups the stores bound to one unit of work.
type Stores struct {
	People        PeopleStore
	Entries       EntryStore
	Relationships RelationshipStore
}

// UnitOfWork runs fn atomically. Units are serialized against each other, and
// a non-nil error from fn discards every write made inside it.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
