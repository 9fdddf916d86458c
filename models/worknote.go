package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkNote is the primary document unit: a dated note about a piece of work,
// optionally tied to people, a department and a project.
type WorkNote struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Body      string             `json:"body" bson:"body"`
	Category  string             `json:"category" bson:"category,omitempty"`
	PersonIDs []string           `json:"person_ids" bson:"person_ids,omitempty"`
	DeptName  string             `json:"dept_name" bson:"dept_name,omitempty"`
	ProjectID string             `json:"project_id" bson:"project_id,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
	// IndexedAt records when the note was last embedded into the vector
	// index. Zero or older than UpdatedAt means the index is stale.
	IndexedAt time.Time `json:"indexed_at,omitempty" bson:"indexed_at,omitempty"`
	Deleted   bool      `json:"-" bson:"deleted,omitempty"`
}

// NeedsReindex reports whether the note's vector entries are out of date.
func (n *WorkNote) NeedsReindex() bool {
	return !n.Deleted && n.IndexedAt.Before(n.UpdatedAt)
}

// DateBucket returns the month bucket ("2026-01") used as vector metadata.
func (n *WorkNote) DateBucket() string {
	return n.CreatedAt.UTC().Format("2006-01")
}
