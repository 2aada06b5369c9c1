package journal

import "strings"

// CreateEntryInput is a new journal entry. Unknown or foreign person ids in
// PersonIDs are dropped silently.
type CreateEntryInput struct {
	Title           string  `json:"title" validate:"required,max=200"`
	Content         string  `json:"content" validate:"required"`
	Mood            string  `json:"mood" validate:"max=50"`
	InteractionType string  `json:"interaction_type" validate:"max=50"`
	PersonIDs       []int64 `json:"people_ids"`
}

func (in *CreateEntryInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Mood = strings.TrimSpace(in.Mood)
	in.InteractionType = strings.TrimSpace(in.InteractionType)
}

// UpdateEntryInput changes only the fields that are non-nil.
type UpdateEntryInput struct {
	Title           *string  `json:"title" validate:"omitnil,min=1,max=200"`
	Content         *string  `json:"content" validate:"omitnil,min=1"`
	Mood            *string  `json:"mood" validate:"omitnil,max=50"`
	InteractionType *string  `json:"interaction_type" validate:"omitnil,max=50"`
	PersonIDs       *[]int64 `json:"people_ids"`
}

func (in *UpdateEntryInput) normalize() {
	trimPtr(in.Title)
	trimPtr(in.Content)
	trimPtr(in.Mood)
	trimPtr(in.InteractionType)
}

type PersonInput struct {
	Name             string `json:"name" validate:"required,max=100"`
	RelationshipType string `json:"relationship_type" validate:"max=50"`
	Description      string `json:"description"`
}

func (in *PersonInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.RelationshipType = strings.TrimSpace(in.RelationshipType)
}

type UpdatePersonInput struct {
	Name             *string `json:"name" validate:"omitnil,min=1,max=100"`
	RelationshipType *string `json:"relationship_type" validate:"omitnil,max=50"`
	Description      *string `json:"description"`
}

func (in *UpdatePersonInput) normalize() {
	trimPtr(in.Name)
	trimPtr(in.RelationshipType)
}

// ConnectionInput labels the connection between two people. Closeness is
// nominally 1 to 10 and is not clamped; zero means 1.
type ConnectionInput struct {
	SourceID         int64  `json:"source_id" validate:"required"`
	TargetID         int64  `json:"target_id" validate:"required"`
	RelationshipType string `json:"relationship_type" validate:"max=50"`
	Closeness        int    `json:"closeness"`
	Notes            string `json:"notes"`
}

type UpdateConnectionInput struct {
	RelationshipType *string `json:"relationship_type" validate:"omitnil,max=50"`
	Closeness        *int    `json:"closeness"`
	Notes            *string `json:"notes"`
}
