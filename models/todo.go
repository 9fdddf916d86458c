package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TodoStatusOpen = "open"
	TodoStatusDone = "done"
)

// Todo is a task item attached to a work note.
type Todo struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	NoteID    string             `json:"note_id" bson:"note_id"`
	Text      string             `json:"text" bson:"text"`
	Status    string             `json:"status" bson:"status"`
	DueDate   *time.Time         `json:"due_date,omitempty" bson:"due_date,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
